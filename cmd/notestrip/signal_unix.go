// Unix signal handling for ending watch mode.
//
// This file is compiled on all non-Windows platforms. It listens for SIGINT
// (Ctrl+C) and SIGTERM, the signal process managers and container runtimes
// send to request a stop.

//go:build !windows

package main

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// signalChannel returns a buffered channel that receives SIGINT and SIGTERM.
// The buffer size of 1 keeps a signal that arrives during a render.
func signalChannel() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, unix.SIGTERM)
	return ch
}
