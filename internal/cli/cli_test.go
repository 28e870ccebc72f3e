package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn/bpmntest"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	docio "github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/layout/report"
)

func newTestCLI() *CLI {
	return New(&bytes.Buffer{})
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newTestCLI().RootCommand()
	for _, name := range []string{"layout", "recommend", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "verbose"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestLayoutFlagsOptions(t *testing.T) {
	f := layoutFlags{refresh: true, noPoolExpansion: true}
	f.opts.LayoutStrategy = "elk-full"
	f.opts.GridSnap = 10

	opts := f.options()
	if !opts.Refresh {
		t.Error("Refresh not set")
	}
	if opts.PoolExpansion == nil || *opts.PoolExpansion {
		t.Errorf("PoolExpansion = %v, want false", opts.PoolExpansion)
	}
	if opts.LayoutStrategy != "elk-full" || opts.GridSnap != 10 {
		t.Errorf("options not carried over: %+v", opts.Options)
	}

	var empty layoutFlags
	if o := empty.options(); o.PoolExpansion != nil {
		t.Error("PoolExpansion should default to nil")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, want string
	}{
		{"diagram.json", "", "diagram.layout.json"},
		{"dir/process.yaml", "", "dir/process.layout.yaml"},
		{"diagram.json", "out.yaml", "out.yaml"},
		{"diagram.json", "-", "-"},
	}
	for _, tt := range tests {
		f := layoutFlags{output: tt.output}
		if got := f.outputPath(tt.input); got != tt.want {
			t.Errorf("outputPath(%q) with -o %q = %q, want %q", tt.input, tt.output, got, tt.want)
		}
	}
}

func TestNewAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "layered", false},
		{"layered", "layered", false},
		{"graphviz", "graphviz", false},
		{"elk", "", true},
	}
	for _, tt := range tests {
		alg, err := newAlgorithm(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("newAlgorithm(%q) error = %v", tt.name, err)
			continue
		}
		if err == nil && alg.Name() != tt.want {
			t.Errorf("newAlgorithm(%q) = %s, want %s", tt.name, alg.Name(), tt.want)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bpmnlayout.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLayoutCommandWritesDocument(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "chain.json")
	if err := docio.Export(bpmntest.New("chain").Chain("", 3).Build(), in); err != nil {
		t.Fatal(err)
	}
	cfg := writeConfig(t, "[cache]\nbackend = \"file\"\ndir = \""+filepath.ToSlash(filepath.Join(dir, "cache"))+"\"\n")
	out := filepath.Join(dir, "chain.out.yaml")

	root := newTestCLI().RootCommand()
	root.SetArgs([]string{"layout", in, "--config", cfg, "-o", out, "--diagnostics=false"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("layout: %v", err)
	}

	d, err := docio.Import(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	prev, _ := d.Bounds("start")
	for _, id := range []string{"t1", "t2", "t3", "end"} {
		r, ok := d.Bounds(id)
		if !ok {
			t.Fatalf("%s has no bounds", id)
		}
		if r.X <= prev.Right() {
			t.Errorf("%s at x=%v does not follow its predecessor ending at %v", id, r.X, prev.Right())
		}
		prev = r
	}

	var buf bytes.Buffer
	root = newTestCLI().RootCommand()
	root.SetOut(&buf)
	root.SetArgs([]string{"cache", "path", "--config", cfg})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != filepath.Join(dir, "cache") {
		t.Errorf("cache path = %q", got)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "cache"))
	if err != nil || len(entries) == 0 {
		t.Errorf("layout result was not cached: %v", err)
	}
}

func TestLayoutCommandRejectsBadOptions(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "chain.json")
	if err := docio.Export(bpmntest.New("chain").Chain("", 1).Build(), in); err != nil {
		t.Fatal(err)
	}

	tests := [][]string{
		{"layout", in, "--no-cache", "--strategy", "spiral"},
		{"layout", in, "--no-cache", "--lanes", "shuffle"},
		{"layout", in, "--no-cache", "--algorithm", "elk"},
		{"layout", filepath.Join(dir, "missing.json"), "--no-cache"},
	}
	for _, args := range tests {
		root := newTestCLI().RootCommand()
		root.SetArgs(args)
		root.SetErr(&bytes.Buffer{})
		if err := root.Execute(); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestDiagnosticsTable(t *testing.T) {
	d := report.New()
	d.CrossingFlows = 2
	d.CrossingFlowPairs = [][2]string{{"f1", "f2"}}

	out := diagnosticsTable(d)
	if !strings.Contains(out, "Crossing flows") || !strings.Contains(out, "2") {
		t.Errorf("table misses crossing count:\n%s", out)
	}
	if strings.Contains(out, "Lane coherence") {
		t.Error("lane metrics shown for a diagram without lanes")
	}

	d.LaneCrossingMetrics = &report.LaneMetrics{TotalLaneFlows: 4, CrossingLaneFlows: 1, LaneCoherenceScore: 75}
	d.RouteFallbacks = []string{"f9"}
	out = diagnosticsTable(d)
	for _, want := range []string{"Lane coherence", "75.0", "f9"} {
		if !strings.Contains(out, want) {
			t.Errorf("table misses %q:\n%s", want, out)
		}
	}

	var buf bytes.Buffer
	printDiagnostics(&buf, d)
	if !strings.Contains(buf.String(), "f1") {
		t.Error("crossing pairs not printed")
	}
	buf.Reset()
	printDiagnostics(&buf, nil)
	if buf.Len() != 0 {
		t.Error("nil diagnostics should print nothing")
	}
}

func TestCacheLocation(t *testing.T) {
	tests := []struct {
		cfg  config.CacheConfig
		want string
	}{
		{config.CacheConfig{Backend: config.CacheNone}, "none"},
		{config.CacheConfig{Backend: config.CacheFile, Dir: "/tmp/bpmn"}, "/tmp/bpmn"},
		{config.CacheConfig{Backend: config.CacheRedis, RedisAddr: "localhost:6379", RedisDB: 2}, "redis://localhost:6379/2"},
	}
	for _, tt := range tests {
		if got := cacheLocation(tt.cfg); got != tt.want {
			t.Errorf("cacheLocation(%s) = %q, want %q", tt.cfg.Backend, got, tt.want)
		}
	}
}
