package ircmux

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"git.sr.ht/~emersion/go-scfg"
)

// ServerConfig is a connection opened at startup.
type ServerConfig struct {
	Server   string
	Nick     string
	TLS      bool
	Channels []string
}

type Config struct {
	Nick     string
	User     string
	Real     string
	TLS      bool
	LogLevel string

	// QuitMessage is sent to every server on exit.
	QuitMessage string

	// PollInterval is how often the input capture looks for the chat
	// input while it is not bound.
	PollInterval time.Duration

	Highlights []string
	Servers    []ServerConfig

	Debug bool
}

func DefaultConfig() Config {
	return Config{
		LogLevel:     "info",
		PollInterval: time.Second,
	}
}

func ParseConfig(r io.Reader) (Config, error) {
	block, err := scfg.Read(r)
	if err != nil {
		return Config{}, err
	}
	return unmarshal(block)
}

func LoadConfigFile(filename string) (Config, error) {
	block, err := scfg.Load(filename)
	if err != nil {
		return Config{}, err
	}
	cfg, err := unmarshal(block)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func directiveParams(d *scfg.Directive, min, max int) ([]string, error) {
	if len(d.Params) < min || (0 <= max && max < len(d.Params)) {
		if min == max {
			return nil, fmt.Errorf("directive %q: expected %d parameter(s), got %d", d.Name, min, len(d.Params))
		}
		return nil, fmt.Errorf("directive %q: unexpected number of parameters: %d", d.Name, len(d.Params))
	}
	return d.Params, nil
}

func parseBool(d *scfg.Directive) (bool, error) {
	params, err := directiveParams(d, 0, 1)
	if err != nil {
		return false, err
	}
	if len(params) == 0 {
		return true, nil
	}
	v, err := strconv.ParseBool(params[0])
	if err != nil {
		return false, fmt.Errorf("directive %q: %w", d.Name, err)
	}
	return v, nil
}

func unmarshal(block scfg.Block) (Config, error) {
	cfg := DefaultConfig()

	for _, d := range block {
		switch d.Name {
		case "nick", "user", "real", "log-level", "quit-message":
			params, err := directiveParams(d, 1, 1)
			if err != nil {
				return cfg, err
			}
			switch d.Name {
			case "nick":
				cfg.Nick = params[0]
			case "user":
				cfg.User = params[0]
			case "real":
				cfg.Real = params[0]
			case "log-level":
				cfg.LogLevel = params[0]
			case "quit-message":
				cfg.QuitMessage = params[0]
			}
		case "tls":
			v, err := parseBool(d)
			if err != nil {
				return cfg, err
			}
			cfg.TLS = v
		case "debug":
			v, err := parseBool(d)
			if err != nil {
				return cfg, err
			}
			cfg.Debug = v
		case "poll-interval":
			params, err := directiveParams(d, 1, 1)
			if err != nil {
				return cfg, err
			}
			interval, err := time.ParseDuration(params[0])
			if err != nil {
				return cfg, fmt.Errorf("directive %q: %w", d.Name, err)
			}
			if interval <= 0 {
				return cfg, fmt.Errorf("directive %q: interval must be positive", d.Name)
			}
			cfg.PollInterval = interval
		case "highlight":
			cfg.Highlights = append(cfg.Highlights, d.Params...)
		case "connect":
			srv, err := unmarshalServer(d, cfg.TLS)
			if err != nil {
				return cfg, err
			}
			cfg.Servers = append(cfg.Servers, srv)
		default:
			return cfg, fmt.Errorf("unknown directive %q", d.Name)
		}
	}

	for i := range cfg.Servers {
		if cfg.Servers[i].Nick == "" {
			cfg.Servers[i].Nick = cfg.Nick
		}
		if cfg.Servers[i].Nick == "" {
			return cfg, fmt.Errorf("connect %q: no nick given and no default nick", cfg.Servers[i].Server)
		}
	}

	return cfg, nil
}

func unmarshalServer(d *scfg.Directive, defaultTLS bool) (ServerConfig, error) {
	params, err := directiveParams(d, 1, 2)
	if err != nil {
		return ServerConfig{}, err
	}
	srv := ServerConfig{
		Server: params[0],
		TLS:    defaultTLS,
	}
	if len(params) == 2 {
		srv.Nick = params[1]
	}

	for _, child := range d.Children {
		switch child.Name {
		case "join":
			if len(child.Params) == 0 {
				return srv, fmt.Errorf("connect %q: directive \"join\": expected at least 1 parameter", srv.Server)
			}
			srv.Channels = append(srv.Channels, child.Params...)
		case "tls":
			v, err := parseBool(child)
			if err != nil {
				return srv, fmt.Errorf("connect %q: %w", srv.Server, err)
			}
			srv.TLS = v
		default:
			return srv, fmt.Errorf("connect %q: unknown directive %q", srv.Server, child.Name)
		}
	}
	return srv, nil
}
