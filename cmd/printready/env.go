package main

import (
	"context"
	"io"
	"os"

	printready "github.com/alnah/go-printready"
)

// Renderer is the part of printready.Printer the CLI uses.
type Renderer interface {
	On(name string, fn printready.Handler) (unsubscribe func(), err error)
	RenderAll(ctx context.Context, reqs []printready.RenderRequest, workers int) []printready.BatchResult
}

// Compile-time interface implementation check.
var _ Renderer = (*printready.Printer)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout      io.Writer
	Stderr      io.Writer
	NewRenderer func(opts ...printready.Option) (Renderer, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewRenderer: func(opts ...printready.Option) (Renderer, error) {
			return printready.NewPrinter(opts...)
		},
	}
}
