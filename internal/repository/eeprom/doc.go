// Package eeprom emulates the byte-addressable non-volatile memory of the
// station.
//
// Store keeps the image in memory and writes it through a Repository on every
// change; FileRepository persists the image as protobuf JSON on disk. Reads
// never fail: an unreadable or blank image reads as erased cells (0xFF), which
// callers treat as "value absent".
package eeprom
