package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zond/azimuth/server"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	config, err := server.ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&config.SSHAddr, "ssh", config.SSHAddr, "Where to listen to SSH connections.")
	flag.StringVar(&config.WSAddr, "ws", config.WSAddr, "Where to listen to websocket connections, empty to disable.")
	flag.StringVar(&config.Dir, "dir", config.Dir, "Where to save database and settings.")
	flag.StringVar(&config.Store, "db", config.Store, "Store backend: sqlite, bolt or memory.")
	flag.StringVar(&config.WorldID, "world", config.WorldID, "ID of the world to load or seed.")
	flag.StringVar(&config.LogPath, "log", config.LogPath, "Rotated log file, in addition to stderr.")

	flag.Parse()

	if config.LogPath != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   config.LogPath,
			MaxSize:    100,
			MaxBackups: 10,
			Compress:   true,
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, config)
	if err != nil {
		log.Fatal(err)
	}

	if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
	log.Printf("Shut down world %q", config.WorldID)
}
