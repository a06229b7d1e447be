// Package service defines the service contracts used by the server manager.
package service

import "context"

// Service is the minimal contract a business service exposes to the
// server manager.
type Service interface {
	// ServiceName returns the unique name of the service.
	ServiceName() string
}

// Initializable is implemented by services that need startup initialization.
// Init is called by the manager before any transport starts accepting
// requests.
type Initializable interface {
	Init(ctx context.Context) error
}

// Closeable is implemented by services that hold resources needing cleanup.
// Close is called by the manager during graceful shutdown, after all
// transports have stopped.
type Closeable interface {
	Close(ctx context.Context) error
}
