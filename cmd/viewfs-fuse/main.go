package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/example/viewfs/pkg/fuse"
	"github.com/example/viewfs/pkg/viewfs"

	_ "github.com/example/viewfs/pkg/fs/local"
	_ "github.com/example/viewfs/pkg/fs/memory"
)

func main() {
	configPath := flag.String("config", "", "Path to the mount table config (YAML)")
	mountPoint := flag.String("mount", "", "Mount point for the composed namespace")
	readOnly := flag.Bool("readonly", false, "Mount filesystem as read-only")
	allowOther := flag.Bool("allow-other", false, "Allow other users to access the mount")
	watch := flag.Bool("watch", true, "Reload the mount table when the config file changes")
	cacheTimeout := flag.Duration("attr-cache", time.Second, "Attribute cache TTL (0 disables)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *configPath == "" || *mountPoint == "" {
		fmt.Fprintln(os.Stderr, "Error: -config and -mount are required")
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := viewfs.LoadFile(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ns, err := viewfs.New(cfg, viewfs.WithLogger(logger))
	if err != nil {
		logger.Error("failed to build namespace", "error", err)
		os.Exit(1)
	}
	defer ns.Close()

	if *watch {
		if err := ns.WatchConfig(*configPath); err != nil {
			logger.Error("failed to watch config", "error", err)
			os.Exit(1)
		}
	}

	if _, err := os.Stat(*mountPoint); os.IsNotExist(err) {
		logger.Info("creating mount point", "path", *mountPoint)
		if err := os.MkdirAll(*mountPoint, 0755); err != nil {
			logger.Error("failed to create mount point", "error", err)
			os.Exit(1)
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nReceived interrupt, exiting...")
		if err := fuse.Unmount(*mountPoint); err != nil {
			// Lazy unmount handles the case where the mount is busy.
			exec.Command("fusermount", "-uz", *mountPoint).Run()
		}
	}()

	options := fuse.MountOptions{
		MountPoint:   *mountPoint,
		ReadOnly:     *readOnly,
		AllowOther:   *allowOther,
		CacheTimeout: *cacheTimeout,
		Debug:        *debug,
	}
	if err := fuse.Mount(ns, options); err != nil {
		logger.Error("mount failed", "error", err)
		os.Exit(1)
	}
}
