// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
//
//	meshviz serve [--config FILE] [flags]   run the server
//	meshviz watch [--url URL]               print events from a running server
//	meshviz send [--url URL] [-f FILE]      post a stream of input events
package cli
