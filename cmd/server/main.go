package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/subosito/gotenv"

	"cardwatch/pkg/config"
	"cardwatch/pkg/parser"
	"cardwatch/pkg/server"
	"cardwatch/pkg/store"
)

func main() {
	_ = gotenv.Load()

	var cfgFile string
	flag.StringVar(&cfgFile, "config", "", "Config file (default is config.yaml)")
	flag.Parse()

	cfg, err := config.Build(cfgFile, nil)
	if err != nil {
		log.Fatal("config error", "err", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "cardwatch",
		Level:           parseLevel(cfg.LogLevel),
	})

	limits := parser.DefaultLimits()
	if cfg.LimitsFile != "" {
		limits, err = parser.LoadLimits(cfg.LimitsFile)
		if err != nil {
			logger.Warn("falling back to built-in limits", "err", err)
		}
	}

	st := store.New(cfg.DataFile(), cfg.Persist, logger)
	st.Load()

	p := parser.New(logger, parser.WithLimits(limits))
	srv := server.New(cfg, logger, p, st)

	addr := cfg.Addr()
	logger.Info("starting server", "addr", addr, "persist", cfg.Persist)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

func parseLevel(s string) log.Level {
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
