// Package app contains the core application logic. It wires the topology
// store, engine and transports together from a config.Config and owns the
// server lifecycle, decoupled from any specific entrypoint like a CLI.
package app
