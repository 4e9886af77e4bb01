// Package testutil holds helpers shared by tests across packages: a
// concurrency-safe log buffer and a scriptable fake observer.
package testutil
