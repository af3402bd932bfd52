package irc

import (
	"strings"
	"unicode/utf8"
)

func word(s string) (w, rest string) {
	split := strings.SplitN(s, " ", 2)

	if len(split) < 2 {
		w = split[0]
		rest = ""
	} else {
		w = split[0]
		rest = split[1]
	}

	return
}

// FullMask splits a "nick!user@host" source into its parts.
func FullMask(s string) (nick, user, host string) {
	if s == "" {
		return
	}

	spl0 := strings.SplitN(s, "@", 2)
	if 1 < len(spl0) {
		host = spl0[1]
	}

	spl1 := strings.SplitN(spl0[0], "!", 2)
	if 1 < len(spl1) {
		user = spl1[1]
	}

	nick = spl1[0]

	return
}

// IsServerSource reports whether a message source names a server rather
// than a user.
func IsServerSource(s string) bool {
	return s != "" && !strings.ContainsAny(s, "!@") && strings.Contains(s, ".")
}

// SourceNick returns the nickname of a user source, or "" for a server
// source or no source at all.
func SourceNick(s string) string {
	if s == "" || IsServerSource(s) {
		return ""
	}
	nick, _, _ := FullMask(s)
	return nick
}

// Member is an entry of a channel member list.
type Member struct {
	// Mode holds the membership prefixes of the member, e.g. "@" or "@+".
	Mode string
	Nick string
	User string
	Host string
}

// ParseNameReply parses the trailing parameter of RPL_NAMREPLY.
func ParseNameReply(trailing string, prefixes string) (names []Member) {
	for _, name := range strings.Split(trailing, " ") {
		if name == "" {
			continue
		}

		var item Member

		mask := strings.TrimLeft(name, prefixes)
		item.Nick, item.User, item.Host = FullMask(mask)
		item.Mode = name[:len(name)-len(mask)]

		names = append(names, item)
	}

	return
}

// CasemapASCII of name is the canonical representation of name according to
// the ascii casemapping.
func CasemapASCII(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if 'A' <= r && r <= 'Z' {
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CasemapRFC1459 of name is the canonical representation of name according
// to the rfc-1459 casemapping.
func CasemapRFC1459(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if 'A' <= r && r <= 'Z' {
			r += 'a' - 'A'
		} else if r == '[' {
			r = '{'
		} else if r == ']' {
			r = '}'
		} else if r == '\\' {
			r = '|'
		} else if r == '~' {
			r = '^'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ParseCTCP splits a CTCP payload ("\x01ACTION waves\x01") into its command
// and its text. ok is false if text is not a CTCP message.
func ParseCTCP(text string) (command, rest string, ok bool) {
	if len(text) < 2 || text[0] != 0x01 {
		return "", "", false
	}
	text = strings.TrimSuffix(text[1:], "\x01")
	command, rest = word(text)
	return strings.ToUpper(command), rest, true
}

func splitChunks(s string, chunkLen int) (chunks []string) {
	if chunkLen <= 0 {
		return []string{s}
	}
	for chunkLen < len(s) {
		i := chunkLen
		for 0 < i && chunkLen-i < utf8.UTFMax && !utf8.RuneStart(s[i]) {
			i--
		}
		if i == 0 {
			// The first rune alone is longer than chunkLen.
			_, i = utf8.DecodeRuneInString(s)
		}
		chunks = append(chunks, s[:i])
		s = s[i:]
	}
	if len(s) != 0 {
		chunks = append(chunks, s)
	}
	return
}

// SplitMessage splits text into lines no longer than chunkLen bytes. Empty
// lines are skipped.
func SplitMessage(text string, chunkLen int) (lines []string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, splitChunks(line, chunkLen)...)
	}
	return
}
