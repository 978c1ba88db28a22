// Package hierarchy provides the in-memory model for hierarchical network
// data: nested biological systems connected by containment edges, each
// system annotated with its leaf-level members.
//
// A [Hierarchy] is a directed acyclic graph with one or more roots. The two
// relation kinds mirror the DDOT ontology format: [EdgeContainment] links a
// system to a contained sub-system, [EdgeMembership] links a system directly
// to a leaf member identifier. Member resolution ([Hierarchy.Members])
// unions explicit members down the DAG and memoizes the result, so repeated
// queries over large hierarchies stay cheap.
//
// Node identifiers are only stable within a single hierarchy instance.
// Comparing nodes across hierarchies (see package hierdiff) is done by
// member-set similarity, never by ID.
package hierarchy
