// Package config holds the layout engine's tuning constants and the
// application settings for the CLI and HTTP server.
//
// Every spacing, gap and scoring weight the layout passes use is an
// empirically tuned value. They live in [Tunables] as named fields so callers
// can override them from a TOML file instead of patching code:
//
//	[layout]
//	layer_spacing = 80
//	label_host_weight = 20
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// [Load] decodes a file over [Default], so a file only needs the keys it
// changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Tunables are the layout engine's named constants.
type Tunables struct {
	// Layered placement
	NodeSpacing      float64 `toml:"node_spacing"`
	LayerSpacing     float64 `toml:"layer_spacing"`
	ContainerPadding float64 `toml:"container_padding"`
	PoolHeaderWidth  float64 `toml:"pool_header_width"`
	PoolSpacing      float64 `toml:"pool_spacing"`
	OrderingSweeps   int     `toml:"ordering_sweeps"`
	ResizeThreshold  float64 `toml:"resize_threshold"`

	// Deterministic placement
	OriginX        float64 `toml:"origin_x"`
	OriginY        float64 `toml:"origin_y"`
	GapEventTask   float64 `toml:"gap_event_task"`
	GapTaskTask    float64 `toml:"gap_task_task"`
	GapGatewayTask float64 `toml:"gap_gateway_task"`
	BranchSpacing  float64 `toml:"branch_spacing"`

	// Lanes
	LanePadding   float64 `toml:"lane_padding"`
	MinLaneHeight float64 `toml:"min_lane_height"`

	// Boundary events, compensation and artifacts
	BoundaryTolerance  float64 `toml:"boundary_tolerance"`
	CompensationOffset float64 `toml:"compensation_offset"`
	AnnotationOffset   float64 `toml:"annotation_offset"`

	// Edge routing
	LoopbackMargin   float64 `toml:"loopback_margin"`
	BundleSpacing    float64 `toml:"bundle_spacing"`
	MinSegmentLength float64 `toml:"min_segment_length"`
	ArrowheadLength  float64 `toml:"arrowhead_length"`

	// Labels
	LabelCharWidth     float64 `toml:"label_char_width"`
	LabelLineHeight    float64 `toml:"label_line_height"`
	LabelMaxWidth      float64 `toml:"label_max_width"`
	LabelMargin        float64 `toml:"label_margin"`
	LabelSegmentWeight float64 `toml:"label_segment_weight"`
	LabelOverlapWeight float64 `toml:"label_overlap_weight"`
	LabelHostWeight    float64 `toml:"label_host_weight"`
}

// DefaultTunables returns the built-in constants.
func DefaultTunables() Tunables {
	return Tunables{
		NodeSpacing:      50,
		LayerSpacing:     60,
		ContainerPadding: 30,
		PoolHeaderWidth:  30,
		PoolSpacing:      60,
		OrderingSweeps:   8,
		ResizeThreshold:  5,

		OriginX:        150,
		OriginY:        100,
		GapEventTask:   50,
		GapTaskTask:    60,
		GapGatewayTask: 50,
		BranchSpacing:  40,

		LanePadding:   30,
		MinLaneHeight: 125,

		BoundaryTolerance:  10,
		CompensationOffset: 60,
		AnnotationOffset:   40,

		LoopbackMargin:   30,
		BundleSpacing:    10,
		MinSegmentLength: 30,
		ArrowheadLength:  10,

		LabelCharWidth:     7,
		LabelLineHeight:    14,
		LabelMaxWidth:      90,
		LabelMargin:        5,
		LabelSegmentWeight: 1,
		LabelOverlapWeight: 2,
		LabelHostWeight:    10,
	}
}

// Validate rejects values no layout can work with.
func (t Tunables) Validate() error {
	positive := map[string]float64{
		"node_spacing":      t.NodeSpacing,
		"layer_spacing":     t.LayerSpacing,
		"gap_event_task":    t.GapEventTask,
		"gap_task_task":     t.GapTaskTask,
		"gap_gateway_task":  t.GapGatewayTask,
		"branch_spacing":    t.BranchSpacing,
		"min_lane_height":   t.MinLaneHeight,
		"label_char_width":  t.LabelCharWidth,
		"label_line_height": t.LabelLineHeight,
		"label_max_width":   t.LabelMaxWidth,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("layout.%s must be positive, got %v", name, v)
		}
	}
	nonNegative := map[string]float64{
		"container_padding":    t.ContainerPadding,
		"pool_header_width":    t.PoolHeaderWidth,
		"pool_spacing":         t.PoolSpacing,
		"resize_threshold":     t.ResizeThreshold,
		"lane_padding":         t.LanePadding,
		"boundary_tolerance":   t.BoundaryTolerance,
		"compensation_offset":  t.CompensationOffset,
		"loopback_margin":      t.LoopbackMargin,
		"bundle_spacing":       t.BundleSpacing,
		"arrowhead_length":     t.ArrowheadLength,
		"label_segment_weight": t.LabelSegmentWeight,
		"label_overlap_weight": t.LabelOverlapWeight,
		"label_host_weight":    t.LabelHostWeight,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("layout.%s must not be negative, got %v", name, v)
		}
	}
	if t.OrderingSweeps < 0 {
		return fmt.Errorf("layout.ordering_sweeps must not be negative, got %d", t.OrderingSweeps)
	}
	return nil
}

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// CacheConfig selects and configures the layout result cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// Config is the complete application configuration.
type Config struct {
	Layout Tunables     `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Layout: DefaultTunables(),
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     defaultCacheDir(),
			Prefix:  "bpmnlayout:",
			TTL:     Duration(24 * time.Hour),
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(60 * time.Second),
			MaxBodyBytes: 8 << 20,
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	return nil
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "bpmnlayout")
	}
	return filepath.Join(os.TempDir(), "bpmnlayout")
}
