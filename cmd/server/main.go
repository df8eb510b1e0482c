package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"linecast/internal/logging"
	"linecast/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		logging.Logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.Log.Level, cfg.Log.Format)

	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		logging.Logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logging.Logger.Info("received signal, shutting down", "signal", sig.String())

	if err := srv.Shutdown(cfg.ShutdownTimeout); err != nil {
		logging.Logger.Error("shutdown did not complete cleanly", "error", err)
		os.Exit(1)
	}
}
