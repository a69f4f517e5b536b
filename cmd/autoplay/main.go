// Command autoplay plays a batch of seeded deals without a shell and
// prints a summary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/solitaire/automatic"
	"github.com/domino14/solitaire/config"
	"github.com/domino14/solitaire/store"
)

func main() {
	cfg := &config.Config{}
	if _, err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	seeds := automatic.SeedRange(cfg.GetUint64(config.ConfigSeed), cfg.GetInt(config.ConfigGames))
	if seedFile := cfg.GetString(config.ConfigSeedFile); seedFile != "" {
		var err error
		if seeds, err = automatic.LoadSeeds(seedFile); err != nil {
			log.Fatal().Err(err).Msg("loading-seeds")
		}
	}

	scfg := cfg.SolverConfig()
	threads := max(scfg.Threads, 1)
	scfg.Threads = 1
	opts := []automatic.RunnerOption{
		automatic.WithPlayer(cfg.GetString(config.ConfigPlayer)),
		automatic.WithThreads(threads),
	}
	if logFile := cfg.GetString(config.ConfigLogFile); logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			log.Fatal().Err(err).Msg("creating-log-file")
		}
		defer f.Close()
		opts = append(opts, automatic.WithLogFile(f))
	}
	if path := cfg.GetString(config.ConfigDBPath); path != "" {
		st, err := store.Open(path)
		if err != nil {
			log.Fatal().Err(err).Msg("opening-store")
		}
		defer st.Close()
		opts = append(opts, automatic.WithStore(st))
	}
	runner, err := automatic.NewRunner(scfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-settings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	sum, err := runner.Run(ctx, seeds)
	if err != nil {
		log.Error().Err(err).Msg("autoplay-failed")
		return
	}
	fmt.Print(sum.String())
}
