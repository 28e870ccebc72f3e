// Package report defines the diagnostics bundle returned with every layout.
//
// Field names follow the JSON the diagnostics are published as. Sections
// that do not apply are omitted rather than zero-valued: a diagram without
// lanes has no LaneCrossingMetrics, a layout that skipped nothing has no
// PinnedSkipped.
package report

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
)

// Quality summarises edge geometry.
type Quality struct {
	// OrthogonalFlowPercent is the share of routed edges whose every
	// segment is axis-aligned.
	OrthogonalFlowPercent float64 `json:"orthogonalFlowPercent" yaml:"orthogonalFlowPercent"`
	// AvgBendCount is the mean of waypoint count minus two, floored at zero.
	AvgBendCount float64 `json:"avgBendCount" yaml:"avgBendCount"`
}

// LaneMetrics counts sequence flows between lane members.
type LaneMetrics struct {
	TotalLaneFlows     int     `json:"totalLaneFlows" yaml:"totalLaneFlows"`
	CrossingLaneFlows  int     `json:"crossingLaneFlows" yaml:"crossingLaneFlows"`
	LaneCoherenceScore float64 `json:"laneCoherenceScore" yaml:"laneCoherenceScore"`
}

// Diagnostics is the result of one layout invocation.
type Diagnostics struct {
	// Strategy is the strategy that ran; empty on dry runs.
	Strategy strategy.Strategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	CrossingFlows       int          `json:"crossingFlows" yaml:"crossingFlows"`
	CrossingFlowPairs   [][2]string  `json:"crossingFlowPairs" yaml:"crossingFlowPairs"`
	QualityMetrics      Quality      `json:"qualityMetrics" yaml:"qualityMetrics"`
	LaneCrossingMetrics *LaneMetrics `json:"laneCrossingMetrics,omitempty" yaml:"laneCrossingMetrics,omitempty"`

	PinnedSkipped        []string `json:"pinnedSkipped,omitempty" yaml:"pinnedSkipped,omitempty"`
	SubprocessesExpanded int      `json:"subprocessesExpanded,omitempty" yaml:"subprocessesExpanded,omitempty"`

	// DI repair counts.
	ShapesAdded       int `json:"shapesAdded,omitempty" yaml:"shapesAdded,omitempty"`
	ConnectionsAdded  int `json:"connectionsAdded,omitempty" yaml:"connectionsAdded,omitempty"`
	DuplicatesRemoved int `json:"duplicatesRemoved,omitempty" yaml:"duplicatesRemoved,omitempty"`

	// RouteFallbacks lists flows that got a template route because the
	// router failed on them.
	RouteFallbacks []string `json:"routeFallbacks,omitempty" yaml:"routeFallbacks,omitempty"`

	RecommendedStrategy *strategy.Recommendation `json:"recommendedStrategy,omitempty" yaml:"recommendedStrategy,omitempty"`
}

// New returns empty diagnostics with a non-nil pair list so it encodes as
// an empty array.
func New() *Diagnostics {
	return &Diagnostics{CrossingFlowPairs: [][2]string{}}
}

// AddPinnedSkipped records ids left alone because they are pinned, keeping
// the list sorted and free of duplicates.
func (d *Diagnostics) AddPinnedSkipped(ids ...string) {
	for _, id := range ids {
		if i, found := slices.BinarySearch(d.PinnedSkipped, id); !found {
			d.PinnedSkipped = slices.Insert(d.PinnedSkipped, i, id)
		}
	}
}

// AddRouteFallback records a flow routed by template.
func (d *Diagnostics) AddRouteFallback(id string) {
	if !slices.Contains(d.RouteFallbacks, id) {
		d.RouteFallbacks = append(d.RouteFallbacks, id)
	}
}

// JSON encodes the diagnostics with indentation.
func (d *Diagnostics) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
