package ircmux

import (
	"encoding/json"
	"fmt"
)

// Command is a request from the front-end. The set of implementations is
// closed.
type Command interface {
	Kind() string
	command()
}

type Connect struct {
	Server string `json:"server"`
	Nick   string `json:"nick"`
}

type Join struct {
	Connection ConnID `json:"connection"`
	Channel    string `json:"channel"`
}

// Part leaves a channel. An empty Message sends no reason.
type Part struct {
	Connection ConnID `json:"connection"`
	Channel    string `json:"channel"`
	Message    string `json:"message"`
}

type Say struct {
	Connection ConnID `json:"connection"`
	Target     string `json:"target"`
	Message    string `json:"message"`
}

type Whois struct {
	Connection ConnID `json:"connection"`
	Nick       string `json:"nick"`
}

type List struct {
	Connection ConnID `json:"connection"`
}

// Disconnect tears a connection down. An empty Message sends no quit
// message.
type Disconnect struct {
	Connection ConnID `json:"connection"`
	Message    string `json:"message"`
}

func (Connect) Kind() string    { return "connect" }
func (Join) Kind() string       { return "join" }
func (Part) Kind() string       { return "part" }
func (Say) Kind() string        { return "say" }
func (Whois) Kind() string      { return "whois" }
func (List) Kind() string       { return "list" }
func (Disconnect) Kind() string { return "disconnect" }

func (Connect) command()    {}
func (Join) command()       {}
func (Part) command()       {}
func (Say) command()        {}
func (Whois) command()      {}
func (List) command()       {}
func (Disconnect) command() {}

// DecodeCommand decodes a JSON command. The "type" member selects the
// command; the other members are its fields.
func DecodeCommand(data []byte) (Command, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	var (
		cmd     Command
		missing string
		err     error
	)
	switch envelope.Type {
	case "connect":
		var c Connect
		err = json.Unmarshal(data, &c)
		if c.Server == "" {
			missing = "server"
		} else if c.Nick == "" {
			missing = "nick"
		}
		cmd = c
	case "join":
		var c Join
		err = json.Unmarshal(data, &c)
		if c.Channel == "" {
			missing = "channel"
		}
		cmd = c
	case "part":
		var c Part
		err = json.Unmarshal(data, &c)
		if c.Channel == "" {
			missing = "channel"
		}
		cmd = c
	case "say":
		var c Say
		err = json.Unmarshal(data, &c)
		if c.Target == "" {
			missing = "target"
		}
		cmd = c
	case "whois":
		var c Whois
		err = json.Unmarshal(data, &c)
		if c.Nick == "" {
			missing = "nick"
		}
		cmd = c
	case "list":
		var c List
		err = json.Unmarshal(data, &c)
		cmd = c
	case "disconnect":
		var c Disconnect
		err = json.Unmarshal(data, &c)
		cmd = c
	case "":
		return nil, fmt.Errorf("invalid command: missing type")
	default:
		return nil, fmt.Errorf("unknown command %q", envelope.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s command: %w", envelope.Type, err)
	}
	if missing != "" {
		return nil, fmt.Errorf("invalid %s command: missing %q", envelope.Type, missing)
	}
	return cmd, nil
}
