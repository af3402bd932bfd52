package ircmux

import (
	"encoding/json"
)

// ConnID identifies a connection for the lifetime of the process.
type ConnID int64

// Message is a normalized notification sent to the front-end. The set of
// implementations is closed; every payload is a copy.
type Message interface {
	Kind() string
	message()
}

// Member is an entry of a channel member list.
type Member struct {
	Nick string `json:"nick"`
	Mode string `json:"mode"`
}

// ConnectingMessage acknowledges a connect command.
type ConnectingMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Server       string `json:"server"`
	Nick         string `json:"nick"`
}

type RegisteredMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Nick         string `json:"nick"`
	Server       string `json:"server"`
}

type MotdMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Motd         string `json:"motd"`
}

type NamesMessage struct {
	ConnectionID ConnID   `json:"connectionId"`
	Channel      string   `json:"channel"`
	Nicks        []Member `json:"nicks"`
}

type TopicMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Channel      string `json:"channel"`
	Topic        string `json:"topic"`
	Nick         string `json:"nick"`
}

// JoinMessage carries no payload besides the connection.
type JoinMessage struct {
	ConnectionID ConnID `json:"connectionId"`
}

type PartMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Channel      string `json:"channel"`
	Nick         string `json:"nick"`
	Reason       string `json:"reason"`
}

type QuitMessage struct {
	ConnectionID ConnID   `json:"connectionId"`
	Nick         string   `json:"nick"`
	Reason       string   `json:"reason"`
	Channels     []string `json:"channels"`
}

type KickMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Channel      string `json:"channel"`
	Nick         string `json:"nick"`
	By           string `json:"by"`
	Reason       string `json:"reason"`
}

type KillMessage struct {
	ConnectionID ConnID   `json:"connectionId"`
	Nick         string   `json:"nick"`
	Reason       string   `json:"reason"`
	Channels     []string `json:"channels"`
}

type ChatMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Nick         string `json:"nick"`
	To           string `json:"to"`
	Text         string `json:"text"`
}

type SelfMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	To           string `json:"to"`
	Text         string `json:"text"`
}

type NoticeMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Nick         string `json:"nick"`
	To           string `json:"to"`
	Text         string `json:"text"`
}

type NickMessage struct {
	ConnectionID ConnID   `json:"connectionId"`
	OldNick      string   `json:"oldNick"`
	NewNick      string   `json:"newNick"`
	Channels     []string `json:"channels"`
}

type InviteMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Channel      string `json:"channel"`
	From         string `json:"from"`
}

// ModeMessage is sent for both granted and revoked modes.
type ModeMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	Added        bool   `json:"-"`
	Channel      string `json:"channel"`
	By           string `json:"by"`
	Mode         string `json:"mode"`
	Argument     string `json:"argument"`
}

type WhoisMessage struct {
	ConnectionID ConnID   `json:"connectionId"`
	Nick         string   `json:"nick"`
	User         string   `json:"user"`
	Host         string   `json:"host"`
	RealName     string   `json:"realname"`
	Server       string   `json:"server"`
	ServerInfo   string   `json:"serverinfo"`
	Idle         string   `json:"idle"`
	Channels     []string `json:"channels"`
}

type ErrorMessage struct {
	ConnectionID ConnID   `json:"connectionId"`
	Prefix       string   `json:"prefix"`
	Server       string   `json:"server"`
	Command      string   `json:"command"`
	RawCommand   string   `json:"rawCommand"`
	CommandType  string   `json:"commandType"`
	Args         []string `json:"args"`
}

type ActionMessage struct {
	ConnectionID ConnID `json:"connectionId"`
	From         string `json:"from"`
	To           string `json:"to"`
	Text         string `json:"text"`
}

// DisconnectedMessage confirms that a disconnect command completed.
type DisconnectedMessage struct {
	ConnectionID ConnID `json:"connectionId"`
}

// KeyMessage is a captured key press. It belongs to no connection.
type KeyMessage struct {
	Key     string `json:"key"`
	AltKey  bool   `json:"altKey"`
	CtrlKey bool   `json:"ctrlKey"`
	MetaKey bool   `json:"metaKey"`
}

func (ConnectingMessage) Kind() string   { return "connecting" }
func (RegisteredMessage) Kind() string   { return "registered" }
func (MotdMessage) Kind() string         { return "motd" }
func (NamesMessage) Kind() string        { return "names" }
func (TopicMessage) Kind() string        { return "topic" }
func (JoinMessage) Kind() string         { return "join" }
func (PartMessage) Kind() string         { return "part" }
func (QuitMessage) Kind() string         { return "quit" }
func (KickMessage) Kind() string         { return "kick" }
func (KillMessage) Kind() string         { return "kill" }
func (ChatMessage) Kind() string         { return "message" }
func (SelfMessage) Kind() string         { return "selfMessage" }
func (NoticeMessage) Kind() string       { return "notice" }
func (NickMessage) Kind() string         { return "nick" }
func (InviteMessage) Kind() string       { return "invite" }
func (WhoisMessage) Kind() string        { return "whois" }
func (ErrorMessage) Kind() string        { return "error" }
func (ActionMessage) Kind() string       { return "action" }
func (DisconnectedMessage) Kind() string { return "disconnected" }
func (KeyMessage) Kind() string          { return "key" }

func (m ModeMessage) Kind() string {
	if m.Added {
		return "modeAdded"
	}
	return "modeRemoved"
}

func (ConnectingMessage) message()   {}
func (RegisteredMessage) message()   {}
func (MotdMessage) message()         {}
func (NamesMessage) message()        {}
func (TopicMessage) message()        {}
func (JoinMessage) message()         {}
func (PartMessage) message()         {}
func (QuitMessage) message()         {}
func (KickMessage) message()         {}
func (KillMessage) message()         {}
func (ChatMessage) message()         {}
func (SelfMessage) message()         {}
func (NoticeMessage) message()       {}
func (NickMessage) message()         {}
func (InviteMessage) message()       {}
func (ModeMessage) message()         {}
func (WhoisMessage) message()        {}
func (ErrorMessage) message()        {}
func (ActionMessage) message()       {}
func (DisconnectedMessage) message() {}
func (KeyMessage) message()          {}

// MessageConnection returns the connection a message belongs to. ok is
// false for messages that are not connection-scoped.
func MessageConnection(m Message) (id ConnID, ok bool) {
	switch m := m.(type) {
	case ConnectingMessage:
		return m.ConnectionID, true
	case RegisteredMessage:
		return m.ConnectionID, true
	case MotdMessage:
		return m.ConnectionID, true
	case NamesMessage:
		return m.ConnectionID, true
	case TopicMessage:
		return m.ConnectionID, true
	case JoinMessage:
		return m.ConnectionID, true
	case PartMessage:
		return m.ConnectionID, true
	case QuitMessage:
		return m.ConnectionID, true
	case KickMessage:
		return m.ConnectionID, true
	case KillMessage:
		return m.ConnectionID, true
	case ChatMessage:
		return m.ConnectionID, true
	case SelfMessage:
		return m.ConnectionID, true
	case NoticeMessage:
		return m.ConnectionID, true
	case NickMessage:
		return m.ConnectionID, true
	case InviteMessage:
		return m.ConnectionID, true
	case ModeMessage:
		return m.ConnectionID, true
	case WhoisMessage:
		return m.ConnectionID, true
	case ErrorMessage:
		return m.ConnectionID, true
	case ActionMessage:
		return m.ConnectionID, true
	case DisconnectedMessage:
		return m.ConnectionID, true
	}
	return 0, false
}

// MarshalMessage encodes m as a JSON object whose "type" member is the kind
// of m, followed by the fields of m.
func MarshalMessage(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	kind, err := json.Marshal(m.Kind())
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(`{"type":,`)+len(kind)+len(payload))
	buf = append(buf, `{"type":`...)
	buf = append(buf, kind...)
	if len(payload) <= len("{}") {
		return append(buf, '}'), nil
	}
	buf = append(buf, ',')
	return append(buf, payload[1:]...), nil
}
