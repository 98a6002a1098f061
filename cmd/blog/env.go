package main

import (
	"io"
	"os"
	"time"
)

// DotenvFile is the file read for BLOG_* defaults in the working directory.
const DotenvFile = ".env"

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the process environment.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	Dotenv  string // Path of the .env file, empty = none
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		Dotenv:  DotenvFile,
	}
}
