// Package strategy classifies the shape of a diagram and recommends how to
// lay it out.
//
// [Select] never fails: an empty or malformed diagram simply yields
// degenerate [Stats] and a low-confidence recommendation.
package strategy

import (
	"strings"

	"github.com/matzehuels/bpmnlayout/pkg/errors"
)

// Strategy names a layout approach.
type Strategy string

const (
	// Deterministic places a trivial chain or single split/merge directly,
	// without the layered algorithm.
	Deterministic Strategy = "deterministic"
	// Full runs the layered algorithm over the whole diagram.
	Full Strategy = "elk-full"
	// Lanes runs the layered algorithm keeping lane members grouped.
	Lanes Strategy = "elk-lanes"
	// Collaboration lays out each pool and routes message flows between them.
	Collaboration Strategy = "elk-collaboration"
	// Subset lays out an explicit set of elements only.
	Subset Strategy = "elk-subset"
)

// All lists every strategy in the order they are documented.
var All = []Strategy{Deterministic, Full, Lanes, Collaboration, Subset}

// Parse returns the strategy named s. The empty string is not a strategy.
func Parse(s string) (Strategy, error) {
	for _, st := range All {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidStrategy,
		"unknown layout strategy %q (want one of %s)", s, joined())
}

func joined() string {
	names := make([]string, len(All))
	for i, st := range All {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// Confidence grades a recommendation.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// Recommendation is the selector's output.
type Recommendation struct {
	Strategy   Strategy   `json:"strategy" yaml:"strategy"`
	Reason     string     `json:"reason" yaml:"reason"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}
