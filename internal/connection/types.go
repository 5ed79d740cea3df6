package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrClosedByExchange = errors.New("exchange closed the connection")
)

// ClientConfig configures an exchange client.
type ClientConfig struct {
	Addr         string        // Exchange address (e.g., localhost:12345)
	DialTimeout  time.Duration // Max time to establish the TCP connection
	WriteTimeout time.Duration // Write deadline for requests
	ReadTimeout  time.Duration // Max wait for a response (0 = no deadline)
}

// DefaultClientConfig returns the settings for a local reference exchange.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Addr:         "localhost:12345",
		DialTimeout:  3 * time.Second,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  30 * time.Second,
	}
}
