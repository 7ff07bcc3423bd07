// Package cli provides CLI commands for the fitout application.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NewContext creates the context for one CLI invocation. It is cancelled on
// SIGINT or SIGTERM.
func NewContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
