// Command chessplay-uci runs the engine as a UCI chess engine on stdio.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hailam/chessplay/internal/config"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/logging"
	"github.com/hailam/chessplay/internal/uci"
)

var (
	configPath string
	hashMB     int
	logLevel   string
	cpuprofile string
)

func main() {
	root := &cobra.Command{
		Use:   "chessplay-uci",
		Short: "A UCI chess engine",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the UCI protocol loop on stdin/stdout",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&configPath, "config", "engine.yaml", "path to a static-defaults config file")
	serve.Flags().IntVar(&hashMB, "hash", 0, "transposition table size in MiB (overrides config)")
	serve.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	serve.Flags().StringVar(&cpuprofile, "cpuprofile", "", "write a CPU profile to this file")

	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if hashMB > 0 {
		cfg.HashMB = hashMB
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logging.New(cfg.LogLevel)
	defer log.Sync()

	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			logging.Fatal(log, "could not create CPU profile", "error", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logging.Fatal(log, "could not start CPU profile", "error", err)
		}
		defer pprof.StopCPUProfile()
		log.Infow("CPU profiling enabled", "path", cpuprofile)
	}

	log.Infow("starting engine",
		"hash_size", humanize.Bytes(uint64(cfg.HashMB)*1024*1024),
		"name", cfg.EngineName, "author", cfg.EngineAuthor)

	eng := engine.NewEngine(cfg.HashMB)
	protocol := uci.New(eng, log, cfg.HashMB)
	protocol.Run()

	return nil
}
