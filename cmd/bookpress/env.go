package main

import (
	"io"
	"os"
	"time"
)

// Environment holds injectable dependencies for testability.
// Commands write through it instead of touching os.Stdout directly.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
