// Package bpmn holds the in-memory process model the layout engine reads and
// writes.
//
// A [Diagram] is an arena: elements, flows, shapes and connections are
// addressed by string id and adjacency is stored as id lists, so the model has
// no pointer cycles and can be cloned or snapshotted cheaply.
//
// The semantic side ([Element], [Flow]) describes what the process contains.
// The interchange side ([Shape], [Connection]) holds the geometry: bounds for
// shapes and waypoints for connections, both keyed by the semantic id they
// render. Layout passes only ever change the interchange side, plus the
// Pinned and Expanded flags.
//
// Element kinds are a closed enum ([Kind]) grouped by [Category] so every pass
// can switch exhaustively over them.
package bpmn
