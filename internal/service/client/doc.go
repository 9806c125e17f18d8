// Package client runs one cstation-ctl command against the station.
//
// It loads the settings, identifies the caller, dials the station over gRPC
// and executes the requested action, optionally retrying while the station
// is unreachable.
package client
