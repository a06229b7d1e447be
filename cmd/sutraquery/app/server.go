// Package app provides the SutraQuery server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ISHANT57/Gita-Chatbot/cmd/sutraquery/app/options"
	"github.com/ISHANT57/Gita-Chatbot/pkg/app"
)

const (
	// Name is the name of the application.
	Name = "sutraquery"

	// commandDesc is the description of the command.
	commandDesc = `SutraQuery Server

A question answering service over classical Hindu scriptures: the Bhagavad Gita,
the Ramayana and the Mahabharata.

This server provides:
  - Scripture indexing with vector embeddings
  - Semantic similarity search over verse passages
  - Grounded answers with chapter and verse citations
  - Exact verse lookup by chapter and verse number`
)

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	application := app.NewApp(
		app.WithName(Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)

	return application
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
