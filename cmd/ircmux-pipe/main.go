// Command ircmux-pipe exposes the session manager over JSON lines: commands
// are read from stdin, messages are written to stdout.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"git.sr.ht/~taiite/ircmux"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	maxLineSize     = 64 * 1024
	shutdownTimeout = 5 * time.Second
)

var (
	configPath  string
	nick        string
	debug       bool
	interactive bool
)

func main() {
	parseFlags()

	cfg := ircmux.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = ircmux.LoadConfigFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load the configuration file: %s\n", err)
			os.Exit(1)
		}
	}
	if nick != "" {
		cfg.Nick = nick
	}
	if debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	logger, err := ircmux.NewLogger(os.Stderr, cfg.LogLevel, term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %s\n", cfg.LogLevel, err)
		os.Exit(1)
	}

	core := ircmux.NewApp(ircmux.AppParams{
		Config: cfg,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	if interactive && term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to set the terminal in raw mode")
		}
		defer term.Restore(int(os.Stdin.Fd()), oldState)

		screen := struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}
		t := term.NewTerminal(screen, "> ")
		in = &terminalReader{t: t}
		out = t
	}

	if err := serve(ctx, core, in, out, cfg.QuitMessage, logger); err != nil {
		logger.Warn().Err(err).Msg("connections still open on exit")
	}
}

// serve runs core until the input ends or ctx is done, then disconnects
// every connection. The event loop outlives ctx so that the quit messages
// can still be sent.
func serve(ctx context.Context, core *ircmux.App, in io.Reader, out io.Writer, quitMessage string, logger zerolog.Logger) error {
	runCtx, cancelRun := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		core.Run(runCtx)
		close(stopped)
	}()
	defer func() {
		cancelRun()
		<-stopped
	}()

	lines := make(chan []byte)
	go readLines(in, lines, logger)

	writeMessages(ctx, core, lines, out, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case m := <-core.Messages():
				writeMessage(out, m, logger)
			case <-shutdownCtx.Done():
				for {
					select {
					case m := <-core.Messages():
						writeMessage(out, m, logger)
					default:
						return
					}
				}
			}
		}
	}()
	err := core.Shutdown(shutdownCtx, quitMessage)
	cancel()
	<-drained
	return err
}

func parseFlags() {
	flag.StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	flag.StringVarP(&nick, "nick", "n", "", "default nickname")
	flag.BoolVarP(&debug, "debug", "d", false, "log at the debug level and dump raw protocol data")
	flag.BoolVarP(&interactive, "interactive", "i", false, "read commands from a line editor when stdin is a terminal")
	flag.Parse()
}

// writeMessages submits the commands read from lines and prints the messages
// of core until the input ends or ctx is done.
func writeMessages(ctx context.Context, core *ircmux.App, lines <-chan []byte, out io.Writer, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			cmd, err := ircmux.DecodeCommand(line)
			if err != nil {
				logger.Warn().Err(err).Bytes("line", line).Msg("ignoring command")
				continue
			}
			core.Submit(cmd)
		case m := <-core.Messages():
			writeMessage(out, m, logger)
		}
	}
}

func writeMessage(out io.Writer, m ircmux.Message, logger zerolog.Logger) {
	data, err := ircmux.MarshalMessage(m)
	if err != nil {
		logger.Error().Err(err).Str("type", m.Kind()).Msg("failed to encode message")
		return
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		logger.Error().Err(err).Msg("failed to write message")
	}
}

func readLines(in io.Reader, lines chan<- []byte, logger zerolog.Logger) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 4096), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lines <- append([]byte(nil), line...)
	}
	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("failed to read commands")
	}
}

// terminalReader turns the lines of a terminal into a stream.
type terminalReader struct {
	t   *term.Terminal
	buf []byte
}

func (r *terminalReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		line, err := r.t.ReadLine()
		if err != nil {
			return 0, err
		}
		r.buf = append([]byte(line), '\n')
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
