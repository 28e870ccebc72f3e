package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/bpmn/bpmntest"
	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
)

// memCache is an in-memory cache that counts calls.
type memCache struct {
	mu         sync.Mutex
	data       map[string][]byte
	gets, sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

type failingAlgorithm struct{}

func (failingAlgorithm) Name() string { return "failing" }
func (failingAlgorithm) Layout(context.Context, *bridge.Graph) (*bridge.Graph, error) {
	return nil, fmt.Errorf("no layout today")
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})
}

func newRunner(c cache.Cache) *Runner {
	return NewRunner(layout.New(nil, config.DefaultTunables()), c, nil, quietLogger())
}

func chain(id string) *bpmn.Diagram { return bpmntest.New(id).Chain("", 2).Build() }

func assertSameGeometry(t *testing.T, want, got *bpmn.Diagram) {
	t.Helper()
	for _, e := range want.Elements() {
		w, _ := want.Bounds(e.ID)
		g, _ := got.Bounds(e.ID)
		assert.Equal(t, w, g, "bounds of %s", e.ID)
	}
	for _, f := range want.Flows() {
		assert.Equal(t, want.Waypoints(f.ID), got.Waypoints(f.ID), "waypoints of %s", f.ID)
	}
}

func TestRunnerCachesLayout(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := newRunner(fc)

	d1 := chain("c")
	res1, err := r.Layout(ctx, d1, Options{})
	require.NoError(t, err)
	assert.False(t, res1.CacheHit)
	assert.NotEmpty(t, res1.RunID)
	assert.Equal(t, strategy.Deterministic, res1.Strategy)

	d2 := chain("c")
	res2, err := r.Layout(ctx, d2, Options{})
	require.NoError(t, err)
	assert.True(t, res2.CacheHit)
	assert.Empty(t, res2.RunID)
	assert.Equal(t, res1.Strategy, res2.Strategy)
	assert.Equal(t, res1.Diagnostics.CrossingFlows, res2.Diagnostics.CrossingFlows)
	assertSameGeometry(t, d1, d2)
}

func TestRunnerKeyDependsOnOptions(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := newRunner(mc)

	_, err := r.Layout(ctx, chain("c"), Options{})
	require.NoError(t, err)
	res, err := r.Layout(ctx, chain("c"), Options{Options: layout.Options{GridSnap: 10}})
	require.NoError(t, err)
	assert.False(t, res.CacheHit, "different grid pitch must not hit")
	assert.Equal(t, 2, mc.sets)
}

func TestRunnerRefresh(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := newRunner(mc)

	_, err := r.Layout(ctx, chain("c"), Options{})
	require.NoError(t, err)
	gets := mc.gets
	res, err := r.Layout(ctx, chain("c"), Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, gets, mc.gets, "refresh must not read the cache")
	assert.Equal(t, 2, mc.sets)
}

func TestRunnerBypassesCache(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := newRunner(mc)

	rec, err := r.Recommend(ctx, chain("c"), nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, strategy.Deterministic, rec.Strategy)

	_, err = r.Layout(ctx, chain("c"), Options{Options: layout.Options{ElementIDs: []string{"t1"}}})
	require.NoError(t, err)
	assert.Zero(t, mc.gets)
	assert.Zero(t, mc.sets)
}

func TestRunnerCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := newRunner(mc)

	d := chain("c")
	opts := Options{}
	require.NoError(t, opts.ValidateAndSetDefaults())
	key, err := r.key(d, &opts)
	require.NoError(t, err)
	mc.data[key] = []byte("{broken")

	res, err := r.Layout(ctx, d, Options{})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.NotEqual(t, "{broken", string(mc.data[key]))
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := newRunner(nil)
	_, err := r.Layout(context.Background(), chain("c"), Options{Options: layout.Options{LayoutStrategy: "magic"}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidStrategy), "err = %v", err)
}

func TestParse(t *testing.T) {
	inline := []byte(`{"elements": [{"id": "s", "type": "startEvent"}]}`)
	d, err := Parse(Source{Content: inline})
	require.NoError(t, err)
	assert.True(t, d.Has("s"))

	path := filepath.Join(t.TempDir(), "d.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: y\nelements:\n  - id: e\n    type: endEvent\n"), 0o644))
	d, err = Parse(Source{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "y", d.ID)

	_, err = Parse(Source{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, err = Parse(Source{Content: inline, Format: "xml"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, err = Parse(Source{Content: []byte(`{}`)})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDocument))
}

func TestDocumentHash(t *testing.T) {
	h1, err := DocumentHash(chain("c"))
	require.NoError(t, err)
	h2, _ := DocumentHash(chain("c"))
	assert.Equal(t, h1, h2)

	d := chain("c")
	d.Translate("t1", 1, 0)
	h3, _ := DocumentHash(d)
	assert.NotEqual(t, h1, h3)
}

func TestWorkspace(t *testing.T) {
	ws := NewWorkspace(newRunner(nil))

	anon := bpmn.New("")
	id, err := ws.Add(anon)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	_, err = ws.Add(chain("bad id"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = ws.Add(chain("c"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c", id}, ws.IDs())

	_, err = ws.Diagram("nope")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	require.NoError(t, ws.Remove(id))
	assert.True(t, errors.Is(ws.Remove(id), errors.ErrCodeNotFound))
}

func TestWorkspaceEditsAndHistory(t *testing.T) {
	ctx := context.Background()
	ws := NewWorkspace(newRunner(nil))
	id, _ := ws.Add(chain("c"))

	res, err := ws.Layout(ctx, id, Options{})
	require.NoError(t, err)
	assert.Equal(t, "c", res.DiagramID)

	d, _ := ws.Diagram(id)
	before, _ := d.Bounds("t1")

	require.NoError(t, ws.Move(id, "t1", 0, 80))
	d, _ = ws.Diagram(id)
	moved, _ := d.Bounds("t1")
	assert.Equal(t, before.Y+80, moved.Y)
	e, _ := d.Element("t1")
	assert.True(t, e.Pinned)

	entries, err := ws.History(id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "layout deterministic", entries[0].Name)

	require.NoError(t, ws.Undo(id))
	d, _ = ws.Diagram(id)
	r, _ := d.Bounds("t1")
	assert.Equal(t, before, r)

	require.NoError(t, ws.Redo(id))
	d, _ = ws.Diagram(id)
	r, _ = d.Bounds("t1")
	assert.Equal(t, moved, r)

	assert.True(t, errors.Is(ws.Redo(id), errors.ErrCodeInvalidInput))
	assert.True(t, errors.Is(ws.Move(id, "ghost", 1, 1), errors.ErrCodeNotFound))

	doc, err := ws.Document(id)
	require.NoError(t, err)
	assert.Len(t, doc.Elements, 4)
}

func TestBatchRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	ws := NewWorkspace(newRunner(nil))
	ws.Add(chain("a"))
	ws.Add(chain("b"))
	snapA, _ := ws.Diagram("a")
	snapB, _ := ws.Diagram("b")

	res, err := ws.Batch(ctx, Batch{
		Ops: []Op{
			{Op: OpMove, DiagramID: "a", ElementID: "t1", DX: 10},
			{Op: OpResize, DiagramID: "b", ElementID: "t2", Bounds: &geom.Rect{Width: 120, Height: 90}},
			{Op: OpMove, DiagramID: "a", ElementID: "ghost", DX: 10},
			{Op: OpMove, DiagramID: "b", ElementID: "t1", DX: 10},
		},
		Layout:      &Options{},
		StopOnError: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	require.NotNil(t, res)
	assert.True(t, res.RolledBack)
	require.Len(t, res.Ops, 3)
	assert.True(t, res.Ops[0].OK)
	assert.False(t, res.Ops[2].OK)
	assert.Equal(t, "NOT_FOUND", res.Ops[2].Code)

	a, _ := ws.Diagram("a")
	b, _ := ws.Diagram("b")
	assertSameGeometry(t, snapA, a)
	assertSameGeometry(t, snapB, b)
	for _, id := range []string{"a", "b"} {
		h, _ := ws.History(id)
		assert.Empty(t, h, "history of %s", id)
	}
}

func TestBatchContinuesWithoutStopOnError(t *testing.T) {
	ctx := context.Background()
	ws := NewWorkspace(newRunner(nil))
	ws.Add(chain("a"))

	res, err := ws.Batch(ctx, Batch{
		Ops: []Op{
			{Op: OpMove, DiagramID: "a", ElementID: "ghost", DX: 10},
			{Op: OpMove, DiagramID: "a", ElementID: "t1", DY: 200},
		},
		Layout: &Options{},
	})
	require.NoError(t, err)
	assert.False(t, res.RolledBack)
	assert.False(t, res.Ops[0].OK)
	assert.True(t, res.Ops[1].OK)
	require.Contains(t, res.Layouts, "a")

	h, _ := ws.History("a")
	assert.Len(t, h, 2, "one edit and one layout")
	d, _ := ws.Diagram("a")
	e, _ := d.Element("t1")
	assert.False(t, e.Pinned, "a full layout clears pins")
}

func TestBatchLayoutFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(layout.New(failingAlgorithm{}, config.DefaultTunables()), nil, nil, quietLogger())
	ws := NewWorkspace(r)
	ws.Add(chain("a"))
	snap, _ := ws.Diagram("a")

	res, err := ws.Batch(ctx, Batch{
		Ops:         []Op{{Op: OpMove, DiagramID: "a", ElementID: "t1", DX: 30}},
		Layout:      &Options{Options: layout.Options{LayoutStrategy: string(strategy.Full)}},
		StopOnError: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLayoutFailed))
	assert.True(t, res.RolledBack)
	assert.Nil(t, res.Layouts)
	a, _ := ws.Diagram("a")
	assertSameGeometry(t, snap, a)
	e, _ := a.Element("t1")
	assert.False(t, e.Pinned)
}

func TestBatchRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	ws := NewWorkspace(nil)
	ws.Add(chain("a"))

	tests := []struct {
		name string
		b    Batch
		code errors.Code
	}{
		{"empty", Batch{}, errors.ErrCodeInvalidInput},
		{"unknown op", Batch{Ops: []Op{{Op: "rotate", DiagramID: "a"}}}, errors.ErrCodeInvalidInput},
		{"resize without bounds", Batch{Ops: []Op{{Op: OpResize, DiagramID: "a", ElementID: "t1"}}}, errors.ErrCodeInvalidInput},
		{"unknown diagram", Batch{Ops: []Op{{Op: OpMove, DiagramID: "zz", ElementID: "t1"}}}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ws.Batch(ctx, tt.b)
			assert.True(t, errors.Is(err, tt.code), "err = %v", err)
		})
	}
}
