// Package config defines the station settings and helpers to load, validate
// and save them in YAML format.
//
// Validate fills defaults for everything optional, so a minimal file only
// needs the gRPC listen address.
package config
