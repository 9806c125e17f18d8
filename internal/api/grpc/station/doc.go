// Package station implements the gRPC transport for the station commands.
//
// The service is registered from a hand-written descriptor; requests and
// responses are the well-known wrapper, empty and struct messages, so no
// generated code is involved. Clients call the methods by their full names,
// see FullMethod.
package station
