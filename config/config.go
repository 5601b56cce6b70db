package config

import (
	"fmt"

	"github.com/spf13/viper"

	"goeval/export"
)

// Config is the full run configuration. Every field has a default; a config
// file only needs the keys it wants to override.
type Config struct {
	EvalModel      string `mapstructure:"eval_model"`
	EvalDevice     string `mapstructure:"eval_device"`
	EvalReadouts   int    `mapstructure:"eval_readouts"`
	TargetModel    string `mapstructure:"target_model"`
	TargetDevice   string `mapstructure:"target_device"`
	TargetReadouts int    `mapstructure:"target_readouts"`

	ParallelGames    int     `mapstructure:"parallel_games"`
	BoardSize        int     `mapstructure:"board_size"`
	Komi             float64 `mapstructure:"komi"`
	MinPassAliveMove int     `mapstructure:"min_pass_alive_moves"`

	ResignEnabled    bool    `mapstructure:"resign_enabled"`
	ResignThreshold  float64 `mapstructure:"resign_threshold"`
	Seed             uint64  `mapstructure:"seed"`
	VirtualLosses    int     `mapstructure:"virtual_losses"`
	ValueInitPenalty float64 `mapstructure:"value_init_penalty"`

	Verbose     bool   `mapstructure:"verbose"`
	SGFDir      string `mapstructure:"sgf_dir"`
	ExportTable string `mapstructure:"export_table"`
	ExportTag   string `mapstructure:"export_tag"`
	OnnxLibrary string `mapstructure:"onnx_library"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("eval_device", "")
	v.SetDefault("eval_readouts", 100)
	v.SetDefault("target_device", "")
	v.SetDefault("target_readouts", 100)
	v.SetDefault("parallel_games", 32)
	v.SetDefault("board_size", 19)
	v.SetDefault("komi", 7.5)
	v.SetDefault("min_pass_alive_moves", 0)
	v.SetDefault("resign_enabled", true)
	v.SetDefault("resign_threshold", -0.999)
	v.SetDefault("seed", 0)
	v.SetDefault("virtual_losses", 8)
	v.SetDefault("value_init_penalty", 2.0)
	v.SetDefault("verbose", true)
	v.SetDefault("sgf_dir", "")
	v.SetDefault("export_table", "")
	v.SetDefault("export_tag", "")
	v.SetDefault("onnx_library", "")
}

// Load reads the config file at path, or only defaults and environment
// overrides when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that would only fail later, mid-run.
func (c *Config) Validate() error {
	if c.ParallelGames < 1 {
		return fmt.Errorf("parallel_games must be positive, got %d", c.ParallelGames)
	}
	if c.EvalReadouts < 1 || c.TargetReadouts < 1 {
		return fmt.Errorf("readouts must be positive, got eval=%d target=%d",
			c.EvalReadouts, c.TargetReadouts)
	}
	if c.BoardSize < 2 || c.BoardSize > 19 {
		return fmt.Errorf("board_size must be in [2,19], got %d", c.BoardSize)
	}
	if c.VirtualLosses < 1 {
		return fmt.Errorf("virtual_losses must be positive, got %d", c.VirtualLosses)
	}
	if c.ExportTable != "" {
		if _, err := export.ParseTarget(c.ExportTable); err != nil {
			return err
		}
	}
	return nil
}
