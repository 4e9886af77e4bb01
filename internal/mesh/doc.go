// Package mesh defines the shared vocabulary of the mesh topology: node
// identities, link technologies, the link key that makes parallel links
// distinguishable, and the serializable graph snapshot handed to observers.
//
// Nothing in this package holds mutable state. The authoritative graph lives
// behind topologystore.Store; everything here is a value type that can be
// copied, compared, and encoded freely.
package mesh
