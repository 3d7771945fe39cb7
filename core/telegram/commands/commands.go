package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Usage documents the argument shape, e.g. "[nama_kota]".
	Usage     string
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}

// Synopsis renders the command name together with its usage hint.
func (c Command) Synopsis(name string) string {
	if c.Usage == "" {
		return name
	}
	return name + " " + c.Usage
}
