// Package io provides JSON and YAML import and export for BPMN diagram
// documents.
//
// # Overview
//
// A diagram document carries the semantic model of one process or
// collaboration together with its interchange geometry. It is the format
// the CLI reads and writes and the body the HTTP API accepts. The same
// document can be written as JSON or YAML:
//
//	{
//	  "id": "order",
//	  "elements": [
//	    {"id": "start", "type": "bpmn:StartEvent"},
//	    {"id": "check", "type": "bpmn:UserTask", "name": "Check order"},
//	    {"id": "end", "type": "bpmn:EndEvent"}
//	  ],
//	  "flows": [
//	    {"id": "f1", "type": "bpmn:SequenceFlow", "source": "start", "target": "check"},
//	    {"id": "f2", "type": "bpmn:SequenceFlow", "source": "check", "target": "end"}
//	  ],
//	  "shapes": [
//	    {"id": "start_di", "elementId": "start", "bounds": {"x": 150, "y": 100, "width": 36, "height": 36}}
//	  ],
//	  "edges": [
//	    {"id": "f1_di", "elementId": "f1", "waypoints": [{"x": 186, "y": 118}, {"x": 236, "y": 118}]}
//	  ]
//	}
//
// Element types are BPMN type tags with or without the "bpmn:" prefix,
// matched case-insensitively. Elements may be listed in any order; parents,
// lanes and boundary event hosts are resolved before their dependents are
// added. Shapes and edges are optional: missing geometry is synthesized by
// the engine's DI repair step.
//
// # Validation
//
// Every document is checked against an embedded JSON Schema before it is
// decoded, then against the structural rules of [bpmn.Diagram] (unique
// ids, existing references, valid containers). Both kinds of failure are
// reported as [errors.ErrCodeInvalidDocument] with the offending location.
//
// # Import
//
// Use [ReadDocument] to decode from any io.Reader, or [Import] to read a
// file whose format is taken from its extension:
//
//	d, err := io.Import("order.yaml")
//
// # Export
//
// [WriteDocument] and [Export] write a diagram back, geometry included.
// Exporting a laid-out diagram and importing it again yields the same
// shapes and waypoints.
package io
