package layout

import (
	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// ExpandSubprocesses turns collapsed subprocesses with sequence flow
// between their children into expanded containers of at least the default
// expanded size. Event subprocesses stay collapsed. It returns the number
// of subprocesses expanded.
func ExpandSubprocesses(d *bpmn.Diagram, t config.Tunables) int {
	n := 0
	for _, e := range d.ElementsOf(bpmn.SubProcess) {
		if e.Expanded || e.TriggeredByEvent || !hasInternalFlow(d, e.ID) {
			continue
		}
		e.Expanded = true
		n++

		w, h := bpmn.DefaultSize(bpmn.SubProcess, true)
		r, ok := d.Bounds(e.ID)
		if !ok {
			continue
		}
		d.SetBounds(e.ID, geom.R(r.X, r.Y, max(r.Width, w), max(r.Height, h)))

		// Children of a collapsed subprocess live on their own plane; bring
		// them inside the new container.
		x := r.X + t.ContainerPadding
		for _, c := range d.Children(e.ID) {
			cr, ok := d.Bounds(c.ID)
			if !ok || c.Kind == bpmn.BoundaryEvent {
				continue
			}
			d.SetBounds(c.ID, geom.R(x, r.Y+t.ContainerPadding, cr.Width, cr.Height))
			x += cr.Width + t.NodeSpacing
		}
	}
	return n
}

func hasInternalFlow(d *bpmn.Diagram, id string) bool {
	for _, f := range d.FlowsOf(bpmn.SequenceFlow) {
		s, okS := d.Element(f.Source)
		t, okT := d.Element(f.Target)
		if okS && okT && s.Parent == id && t.Parent == id {
			return true
		}
	}
	return false
}
