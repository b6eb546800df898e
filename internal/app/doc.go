// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle: load a patch, build it
// into an audio context, render it, and report. It is decoupled from any
// specific entrypoint like a CLI.
package app
