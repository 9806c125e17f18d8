// Package server runs the station daemon.
//
// A single main loop owns the tone sequencer, the fan and light automation,
// the guard and the hourly chime. GPIO handlers and timers only raise atomic
// flags; RPCs are executed on the loop as commands. State changes are pushed
// to the websocket hub and, when configured, to MQTT.
package server
