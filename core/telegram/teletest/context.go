// Package teletest provides an in-memory tele.Context for handler and router tests.
package teletest

import (
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Sent records one outbound call made through the fake context.
type Sent struct {
	What any
	Opts []any
}

// Text returns the payload as string when it was a text message.
func (s Sent) Text() string {
	t, _ := s.What.(string)
	return t
}

// SendOptions returns the first *tele.SendOptions passed with the call, if any.
func (s Sent) SendOptions() *tele.SendOptions {
	for _, o := range s.Opts {
		if so, ok := o.(*tele.SendOptions); ok {
			return so
		}
	}
	return nil
}

// Context implements the subset of tele.Context used by the bot.
// Calling any other method panics through the nil embedded interface.
type Context struct {
	tele.Context

	upd     tele.Update
	mu      sync.Mutex
	store   map[string]any
	sent    []Sent
	SendErr error
}

// NewMessage builds a context for a private text message.
func NewMessage(chatID, userID int64, text string) *Context {
	msg := &tele.Message{
		ID:     1,
		Text:   text,
		Chat:   &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
		Sender: &tele.User{ID: userID, Username: "tester"},
	}
	if strings.HasPrefix(text, "/") {
		if _, payload, ok := strings.Cut(text, " "); ok {
			msg.Payload = strings.TrimSpace(payload)
		}
	}
	return &Context{
		upd:   tele.Update{ID: 100, Message: msg},
		store: make(map[string]any),
	}
}

func (c *Context) Update() tele.Update { return c.upd }

func (c *Context) Message() *tele.Message { return c.upd.Message }

func (c *Context) Chat() *tele.Chat {
	if c.upd.Message == nil {
		return nil
	}
	return c.upd.Message.Chat
}

func (c *Context) Sender() *tele.User {
	if c.upd.Message == nil {
		return nil
	}
	return c.upd.Message.Sender
}

func (c *Context) Recipient() tele.Recipient { return c.Chat() }

func (c *Context) Text() string {
	if c.upd.Message == nil {
		return ""
	}
	return c.upd.Message.Text
}

// Args mirrors telebot: the command payload split on whitespace, or the text fields otherwise.
func (c *Context) Args() []string {
	m := c.upd.Message
	if m == nil {
		return nil
	}
	if strings.HasPrefix(m.Text, "/") {
		return strings.Fields(m.Payload)
	}
	return strings.Fields(m.Text)
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = val
}

func (c *Context) Send(what any, opts ...any) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) Reply(what any, opts ...any) error { return c.Send(what, opts...) }

// Sent returns a copy of every recorded outbound call.
func (c *Context) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// Texts returns the text payloads of all recorded sends.
func (c *Context) Texts() []string {
	var out []string
	for _, s := range c.Sent() {
		out = append(out, s.Text())
	}
	return out
}
