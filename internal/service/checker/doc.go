// Package checker polls the station and reports guard transitions.
package checker
