// Package pkg provides the libraries behind bpmnlayout, an automatic layout
// engine for BPMN 2.0 diagrams.
//
// # Overview
//
// bpmnlayout takes a process model with missing or poor diagram geometry and
// assigns positions to every shape and waypoints to every connection. It
// keeps participants, lanes and boundary events intact and reports on the
// quality of what it produced. The pkg directory is organized into four
// areas:
//
//  1. Model: [bpmn], [geom] and [io] describe diagrams and read or write them.
//  2. Layout: [layout] and its subpackages select a strategy and run it, with
//     [layered] and [layered/graphviz] as the graph-drawing back ends.
//  3. Editing: [history] and [layout/incremental] record and undo changes.
//  4. Orchestration: [pipeline] adds caching ([cache]) and a workspace of
//     diagrams on top of the engine.
//
// # Architecture
//
// The typical data flow:
//
//	JSON or YAML document
//	         ↓
//	    [io] package (decode, validate against the schema)
//	         ↓
//	    [layout/strategy] (analyze, recommend a strategy)
//	         ↓
//	    [layout] engine (passes, back end, DI repair)
//	         ↓
//	    [layout/report] diagnostics + updated document
//
// # Quick Start
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/matzehuels/bpmnlayout/pkg/cache"
//	    "github.com/matzehuels/bpmnlayout/pkg/config"
//	    docio "github.com/matzehuels/bpmnlayout/pkg/io"
//	    "github.com/matzehuels/bpmnlayout/pkg/layout"
//	    "github.com/matzehuels/bpmnlayout/pkg/pipeline"
//	)
//
//	d, _ := docio.Import("order.json")
//	eng := layout.New(nil, config.Default().Layout)
//	r := pipeline.NewRunner(eng, cache.NewNullCache(), nil, nil)
//	res, _ := r.Layout(context.Background(), d, pipeline.Options{})
//	fmt.Println(res.Strategy, res.Diagnostics.CrossingFlows)
//	_ = docio.Export(d, "order.layout.json")
//
// # Main Packages
//
// [bpmn] - The diagram model: elements, flows, shapes and edges, with the
// containment rules between pools, lanes and subprocesses.
//
// [layout] - The layout engine. It validates options, picks a strategy and
// runs the ordered [layout/passes] over the diagram.
//
// [layered] - A pure Go Sugiyama-style layered algorithm built on [dag] and
// [dag/transform]. [layered/graphviz] is an alternative back end that uses
// Graphviz dot through go-graphviz.
//
// [pipeline] - Runner and Workspace. The runner caches layout results by
// document hash; the workspace keeps diagrams in memory with undo history.
//
// [cache] - File, Redis and null result caches.
//
// [config] - TOML configuration for tunables, cache and server.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for layout, cache and HTTP events.
//
// [bpmn]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/bpmn
// [geom]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/geom
// [io]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/io
// [layout]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/layout
// [layout/passes]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/layout/passes
// [layout/incremental]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/layout/incremental
// [layered]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/layered
// [layered/graphviz]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/layered/graphviz
// [dag]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/dag/transform
// [history]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/history
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/observability
//
// [layout/strategy]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/layout/strategy
// [layout/report]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/layout/report
package pkg
