package host

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

type Configuration struct {
	Registry struct {
		AssetLimit       uint64   `toml:"asset-limit"`
		AssetLimitString string   `toml:"asset-limit-u128"`
		UserAssetLimit   uint64   `toml:"user-asset-limit"`
		OwnerOnly        bool     `toml:"owner-only"`
		Scoped           bool     `toml:"scoped"`
		ExplicitIds      bool     `toml:"explicit-ids"`
		Minters          []string `toml:"minters"`
	} `toml:"registry"`
	Group struct {
		Batch        int    `toml:"batch"`
		PollInterval string `toml:"poll-interval"`
	} `toml:"group"`
	HTTP struct {
		Listen string `toml:"listen"`
	} `toml:"http"`
	Store struct {
		GCInterval      string  `toml:"gc-interval"`
		GCLSMThreshold  int64   `toml:"gc-lsm-threshold"`
		GCVLogThreshold int64   `toml:"gc-vlog-threshold"`
		GCDiscardRatio  float64 `toml:"gc-discard-ratio"`
	} `toml:"store"`
}

const (
	DefaultBatch        = 100
	DefaultPollInterval = time.Second
	DefaultListen       = "127.0.0.1:7001"

	DefaultGCInterval      = 5 * time.Minute
	DefaultGCLSMThreshold  = 1024 * 1024 * 8
	DefaultGCVLogThreshold = 1024 * 1024 * 32
	DefaultGCDiscardRatio  = 0.5
)

func Setup(path string) (*Configuration, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfiguration(f)
}

func ParseConfiguration(data []byte) (*Configuration, error) {
	var conf Configuration
	err := toml.Unmarshal(data, &conf)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if conf.Group.Batch <= 0 {
		conf.Group.Batch = DefaultBatch
	}
	if conf.Group.PollInterval == "" {
		conf.Group.PollInterval = DefaultPollInterval.String()
	}
	if _, err := time.ParseDuration(conf.Group.PollInterval); err != nil {
		return nil, fmt.Errorf("invalid poll interval %s", conf.Group.PollInterval)
	}
	if conf.HTTP.Listen == "" {
		conf.HTTP.Listen = DefaultListen
	}

	sc := &conf.Store
	if sc.GCInterval == "" {
		sc.GCInterval = DefaultGCInterval.String()
	}
	if _, err := time.ParseDuration(sc.GCInterval); err != nil {
		return nil, fmt.Errorf("invalid gc interval %s", sc.GCInterval)
	}
	if sc.GCLSMThreshold <= 0 {
		sc.GCLSMThreshold = DefaultGCLSMThreshold
	}
	if sc.GCVLogThreshold <= 0 {
		sc.GCVLogThreshold = DefaultGCVLogThreshold
	}
	if sc.GCDiscardRatio == 0 {
		sc.GCDiscardRatio = DefaultGCDiscardRatio
	}
	if sc.GCDiscardRatio <= 0 || sc.GCDiscardRatio >= 1 {
		return nil, fmt.Errorf("invalid gc discard ratio %f", sc.GCDiscardRatio)
	}
	return &conf, nil
}

func (conf *Configuration) PollInterval() time.Duration {
	d, err := time.ParseDuration(conf.Group.PollInterval)
	if err != nil || d <= 0 {
		return DefaultPollInterval
	}
	return d
}

// GCInterval is the period of the store GC loop, zero disables the loop.
func (conf *Configuration) GCInterval() time.Duration {
	d, err := time.ParseDuration(conf.Store.GCInterval)
	if err != nil || d < 0 {
		return DefaultGCInterval
	}
	return d
}
