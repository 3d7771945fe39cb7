package middleware

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/metrics"
)

const countersKey = "sent_counters"

// Counters tracks what a handler sent back for the current update.
type Counters struct {
	Messages int
	// Keyboard is set once any sent message carried reply markup.
	Keyboard bool
}

// CountersFrom returns the counters of c, zero when MessageMetricsMiddleware did not run.
func CountersFrom(c tele.Context) Counters {
	if p, ok := c.Get(countersKey).(*Counters); ok {
		return *p
	}
	return Counters{}
}

// countingContext intercepts Send and Reply; other calls pass through.
type countingContext struct {
	tele.Context
	counters *Counters
}

func (c countingContext) track(err error, opts []any) error {
	if err != nil {
		return err
	}
	c.counters.Messages++
	c.counters.Keyboard = c.counters.Keyboard || withMarkup(opts)
	metrics.MessagesSent.Inc()
	return nil
}

func (c countingContext) Send(what any, opts ...any) error {
	return c.track(c.Context.Send(what, opts...), opts)
}

func (c countingContext) Reply(what any, opts ...any) error {
	return c.track(c.Context.Reply(what, opts...), opts)
}

func withMarkup(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		}
	}
	return false
}

// MessageMetricsMiddleware counts replies per update for the handler summary
// and the messages_sent metric.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		counters := &Counters{}
		c.Set(countersKey, counters)
		return next(countingContext{Context: c, counters: counters})
	}
}
