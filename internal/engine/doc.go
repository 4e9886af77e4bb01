// Package engine ties the topology processor to the observer registry.
//
// It owns the one ordering rule of the system: an event is applied to the
// graph and queued for every observer before the next event is applied, and
// a newly attached observer has its snapshot queued before any event that
// follows it. Each observer therefore sees its snapshot and then every later
// event, in the order the graph changed.
package engine
