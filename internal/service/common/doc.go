// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the station service with call
// timeouts, and detection of the current system actor (user@host) which is
// attached to every call as metadata.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
