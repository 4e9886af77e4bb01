// Package processor holds the per-kind transition rules of the mesh: for
// each input event it applies the graph mutation and builds the output event
// observers receive.
//
// Topology-affecting kinds (connect, disconnect, turned_on, turned_off)
// embed a full snapshot so observers can resynchronize without delta
// history. Traffic kinds (heartbeat and the packet kinds) only ensure the
// referenced node exists and omit the snapshot; nodes created that way stay
// invisible to observers until the next snapshot-bearing event.
package processor
