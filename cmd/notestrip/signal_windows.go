// Windows signal handling for ending watch mode.
//
// This file is compiled only on Windows, which has no SIGTERM. The Go runtime
// maps CTRL_BREAK_EVENT and console-close events to os.Interrupt.

//go:build windows

package main

import (
	"os"
	"os/signal"
)

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// signalChannel returns a buffered channel that receives os.Interrupt.
func signalChannel() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch
}
