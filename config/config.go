// Package config loads settings from flags, SOLITAIRE_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/solitaire/heuristic"
	"github.com/domino14/solitaire/solver"
)

const (
	ConfigFile         = "config"
	ConfigDebug        = "debug"
	ConfigNodeBudget   = "node-budget"
	ConfigTimeBudget   = "time-budget"
	ConfigDrawCount    = "draw-count"
	ConfigDepthPenalty = "depth-penalty"
	ConfigThreads      = "threads"
	ConfigSeed         = "seed"
	ConfigGames        = "games"
	ConfigDBPath       = "db-path"
	ConfigCPUProfile   = "cpu-profile"
	ConfigMemProfile   = "mem-profile"
	ConfigPlayer       = "player"
	ConfigSeedFile     = "seed-file"
	ConfigLogFile      = "log-file"

	ConfigWeightsPrefix      = "weights."
	ConfigWeightsFoundation  = ConfigWeightsPrefix + "foundation"
	ConfigWeightsFaceUp      = ConfigWeightsPrefix + "face_up"
	ConfigWeightsFaceDown    = ConfigWeightsPrefix + "face_down"
	ConfigWeightsEmptyColumn = ConfigWeightsPrefix + "empty_column"
	ConfigWeightsStockWaste  = ConfigWeightsPrefix + "stock_waste"
	ConfigWeightsRecycle     = ConfigWeightsPrefix + "recycle"
	ConfigWeightsWon         = ConfigWeightsPrefix + "won"
)

type Config struct {
	*viper.Viper
}

// DefaultConfig has every default and reads nothing from outside.
func DefaultConfig() *Config {
	c := &Config{viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	sd := solver.DefaultConfig()
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigNodeBudget, sd.NodeBudget)
	c.SetDefault(ConfigTimeBudget, sd.TimeBudget)
	c.SetDefault(ConfigDrawCount, 1)
	c.SetDefault(ConfigDepthPenalty, sd.DepthPenalty)
	c.SetDefault(ConfigThreads, 1)
	c.SetDefault(ConfigSeed, 0)
	c.SetDefault(ConfigGames, 100)
	c.SetDefault(ConfigDBPath, "")
	c.SetDefault(ConfigPlayer, "search")

	w := sd.Weights
	c.SetDefault(ConfigWeightsFoundation, w.Foundation)
	c.SetDefault(ConfigWeightsFaceUp, w.FaceUp)
	c.SetDefault(ConfigWeightsFaceDown, w.FaceDown)
	c.SetDefault(ConfigWeightsEmptyColumn, w.EmptyColumn)
	c.SetDefault(ConfigWeightsStockWaste, w.StockWaste)
	c.SetDefault(ConfigWeightsRecycle, w.Recycle)
	c.SetDefault(ConfigWeightsWon, w.Won)
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("solitaire", pflag.ContinueOnError)
	// Everything from the first non-flag on is a shell command line.
	fs.SetInterspersed(false)
	fs.String(ConfigFile, "", "YAML config file")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigNodeBudget, 0, "max frontier pops per search (default sized from system memory)")
	fs.Duration(ConfigTimeBudget, 0, "max wall-clock time per search (default 30s)")
	fs.Int(ConfigDrawCount, 1, "cards turned per draw: 1 or 3")
	fs.Float64(ConfigDepthPenalty, 0, "priority penalty per move of depth (default 0.5)")
	fs.Int(ConfigThreads, 1, "search threads")
	fs.Uint64(ConfigSeed, 0, "first deal seed")
	fs.Int(ConfigGames, 100, "deals to play in batch mode")
	fs.String(ConfigDBPath, "", "sqlite file for solve records; empty disables")
	fs.String(ConfigPlayer, "search", "batch player: search or greedy")
	fs.String(ConfigSeedFile, "", "batch seeds file, instead of a seed range")
	fs.String(ConfigLogFile, "", "batch CSV log, one line per game")
	fs.String(ConfigCPUProfile, "", "write a CPU profile here")
	fs.String(ConfigMemProfile, "", "write a memory profile here")
	return fs
}

// Load parses args and merges in the environment and the config file.
// Arguments that are not flags are returned.
func (c *Config) Load(args []string) ([]string, error) {
	if c.Viper == nil {
		c.Viper = viper.New()
	}
	c.setDefaults()
	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	// Only flags given on the command line override defaults.
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if err := c.BindPFlag(f.Name, f); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	c.SetEnvPrefix("SOLITAIRE")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	c.AutomaticEnv()

	if f := c.GetString(ConfigFile); f != "" {
		c.SetConfigFile(f)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", f, err)
		}
	}
	return fs.Args(), nil
}

// Weights reads the weights.* keys.
func (c *Config) Weights() heuristic.Weights {
	return heuristic.Weights{
		Foundation:  c.GetFloat64(ConfigWeightsFoundation),
		FaceUp:      c.GetFloat64(ConfigWeightsFaceUp),
		FaceDown:    c.GetFloat64(ConfigWeightsFaceDown),
		EmptyColumn: c.GetFloat64(ConfigWeightsEmptyColumn),
		StockWaste:  c.GetFloat64(ConfigWeightsStockWaste),
		Recycle:     c.GetFloat64(ConfigWeightsRecycle),
		Won:         c.GetFloat64(ConfigWeightsWon),
	}
}

// SolverConfig turns the settings into the explicit value the solver
// is built from.
func (c *Config) SolverConfig() solver.Config {
	return solver.Config{
		NodeBudget:   c.GetInt(ConfigNodeBudget),
		TimeBudget:   c.GetDuration(ConfigTimeBudget),
		DrawCount:    c.GetInt(ConfigDrawCount),
		DepthPenalty: c.GetFloat64(ConfigDepthPenalty),
		Weights:      c.Weights(),
		Threads:      c.GetInt(ConfigThreads),
	}
}

// SanitizedSettings lists every setting, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
