package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.sr.ht/~taiite/ircmux"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

const shutdownTimeout = 5 * time.Second

func main() {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	var configPath, nick string
	var debug bool
	flag.StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	flag.BoolVarP(&debug, "debug", "d", false, "log at the debug level and dump raw protocol data")
	flag.StringVarP(&nick, "nick", "n", "", "default nickname for /connect")
	flag.Parse()

	explicitConfig := configPath != ""
	if !explicitConfig {
		configDir, err := os.UserConfigDir()
		if err != nil {
			panic(err)
		}
		configPath = filepath.Join(configDir, "ircmux", "ircmux.conf")
	}

	cfg, err := ircmux.LoadConfigFile(configPath)
	if errors.Is(err, fs.ErrNotExist) && !explicitConfig {
		cfg, err = ircmux.DefaultConfig(), nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load the configuration file at %q: %s\n", configPath, err)
		os.Exit(1)
	}
	if nick != "" {
		cfg.Nick = nick
	}
	if debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	cacheDir := getCacheDir()
	logFile, err := os.OpenFile(filepath.Join(cacheDir, "ircmux.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open the log file: %s\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger, err := ircmux.NewLogger(logFile, cfg.LogLevel, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %s\n", cfg.LogLevel, err)
		os.Exit(1)
	}

	core := ircmux.NewApp(ircmux.AppParams{
		Config: cfg,
		Logger: logger,
	})

	app, err := NewApp(core, cfg, logger.With().Str("component", "tui").Logger(), getLastBuffer(cacheDir))
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize the terminal")
		fmt.Fprintf(os.Stderr, "failed to initialize the terminal: %s\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		core.Run(ctx)
		close(stopped)
	}()

	app.Run()
	app.Close()

	shutdown(core, app.QuitMessage(), logger)
	cancel()
	<-stopped

	// Write last buffer on close
	lastBufferPath := filepath.Join(cacheDir, "lastbuffer.txt")
	err = os.WriteFile(lastBufferPath, []byte(app.CurrentBuffer()), 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write last buffer at %q: %s\n", lastBufferPath, err)
	}
}

// shutdown disconnects every connection, discarding the messages nobody
// reads anymore.
func shutdown(core *ircmux.App, message string, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	go func() {
		for {
			select {
			case <-core.Messages():
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := core.Shutdown(ctx, message); err != nil {
		logger.Warn().Err(err).Msg("connections still open on exit")
	}
}

func getCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		panic(err)
	}
	cachePath := filepath.Join(cacheDir, "ircmux")
	err = os.MkdirAll(cachePath, 0755)
	if err != nil {
		panic(err)
	}
	return cachePath
}

func getLastBuffer(cacheDir string) string {
	buf, err := os.ReadFile(filepath.Join(cacheDir, "lastbuffer.txt"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(buf))
}
