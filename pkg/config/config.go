package config

import (
	"errors"
	"fmt"
	"github.com/Borislavv/go-count-sketch/pkg/hasher"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"time"
)

const (
	Prod = "prod"
	Dev  = "dev"
	Test = "test"
)

// EnvConfigPath names the environment variable holding the yaml config path.
const EnvConfigPath = "COUNTSKETCH_CONFIG"

var (
	ConfigPathIsEmptyError = errors.New("config path is empty")
	InvalidConfigError     = errors.New("invalid config")
)

type Sketch struct {
	Sketch SketchBox `yaml:"sketch"`
}

func (c *Sketch) IsProd() bool {
	return c.Sketch.Env == Prod
}

func (c *Sketch) IsDev() bool {
	return c.Sketch.Env == Dev
}

func (c *Sketch) IsTest() bool {
	return c.Sketch.Env == Test
}

type SketchBox struct {
	Env         string   `yaml:"env"`
	Epsilon     float64  `yaml:"epsilon"` // error bound, (0, 1]
	Gamma       float64  `yaml:"gamma"`   // failure probability, (0, 1]
	Seed        *uint64  `yaml:"seed"`    // fixed PCG seed for reproducible runs
	Seeds       []uint64 `yaml:"seeds"`   // explicit row seeds, takes precedence over seed
	Hash        string   `yaml:"hash"`    // mix64, murmur3 or xxh3
	Domain      string   `yaml:"domain"`  // xxh3 or xxhash
	MaxCounters int      `yaml:"max_counters"`
	Logs        Logs     `yaml:"logs"`
	Server      Server   `yaml:"server"`
	Ingest      Ingest   `yaml:"ingest"`
}

type Logs struct {
	Level         string        `yaml:"level"`
	Stats         bool          `yaml:"stats"` // periodic [stats] lines
	StatsInterval time.Duration `yaml:"stats_interval"`
}

type Server struct {
	Addr       string `yaml:"addr"`
	RecentKeys int    `yaml:"recent_keys"` // ring size for /stats, power of two
}

type Ingest struct {
	Workers int `yaml:"workers"` // parsing goroutines
	Buffer  int `yaml:"buffer"`  // records queued for the single writer
}

// Default returns a config usable without any file.
func Default() *Sketch {
	return &Sketch{
		Sketch: SketchBox{
			Env:     Prod,
			Epsilon: 0.01,
			Gamma:   0.1,
			Hash:    hasher.Mix64Name,
			Domain:  hasher.XXH3Name,
			Logs: Logs{
				Level:         "info",
				StatsInterval: 5 * time.Second,
			},
			Server: Server{
				Addr:       ":8020",
				RecentKeys: 1024,
			},
			Ingest: Ingest{
				Workers: 4,
				Buffer:  4096,
			},
		},
	}
}

// Validate checks the parts the sketch itself does not. Epsilon and gamma are
// validated by sketch.New so both paths report the same error.
func (c *Sketch) Validate() error {
	box := c.Sketch
	if _, err := hasher.StrongByName(box.Hash); err != nil {
		return fmt.Errorf("%w: %w", InvalidConfigError, err)
	}
	if _, err := hasher.DomainByName(box.Domain); err != nil {
		return fmt.Errorf("%w: %w", InvalidConfigError, err)
	}
	if box.MaxCounters < 0 {
		return fmt.Errorf("%w: max_counters cannot be negative", InvalidConfigError)
	}
	if box.Server.RecentKeys <= 0 || box.Server.RecentKeys&(box.Server.RecentKeys-1) != 0 {
		return fmt.Errorf("%w: server.recent_keys must be a power of 2", InvalidConfigError)
	}
	if box.Ingest.Workers <= 0 {
		return fmt.Errorf("%w: ingest.workers must be positive", InvalidConfigError)
	}
	if box.Ingest.Buffer < 0 {
		return fmt.Errorf("%w: ingest.buffer cannot be negative", InvalidConfigError)
	}
	if box.Logs.Stats && box.Logs.StatsInterval <= 0 {
		return fmt.Errorf("%w: logs.stats_interval must be positive", InvalidConfigError)
	}
	return nil
}

// LoadConfig reads yaml from path on top of Default. Relative paths are
// resolved against the working directory.
func LoadConfig(path string) (*Sketch, error) {
	if path == "" {
		return nil, ConfigPathIsEmptyError
	}

	if !filepath.IsAbs(path) {
		dir, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, path)
	}

	path, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute config filepath: %w", err)
	}

	if _, err = os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	return cfg, nil
}
