// Package automation drives the fan relay from recent activity and the
// light relay from presence, time of day and ambient lux.
//
// The fan alternates between on and off periods whose length follows the
// activity rate: the more presence events per minute, the longer the fan
// runs and the shorter it rests. The light turns on for presence at night
// when the room is dark and turns off after an idle timeout.
//
// Both relays can be forced manually; the manual/auto choice and the manual
// state survive restarts through the EEPROM tri-state cells.
package automation
