package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/sholatbot/core/telegram"
	"github.com/m3rciful/sholatbot/core/telegram/commands"
	"github.com/m3rciful/sholatbot/core/telegram/teletest"
)

type fakeResolver struct {
	consume bool
	err     error
	seen    []string
}

func (f *fakeResolver) Resolve(c tele.Context) (bool, error) {
	f.seen = append(f.seen, c.Text())
	return f.consume, f.err
}

func echoRegistry() *tg.Registry {
	reg := tg.NewRegistry()
	reg.SetTextFallback(func(c tele.Context) error { return c.Send(c.Text()) })
	reg.RegisterCommand("/start", commands.Command{
		Handler:     func(c tele.Context) error { return c.Send("hello") },
		Description: "start",
	})
	return reg
}

func textHandler(t *testing.T, r Resolver, reg *tg.Registry) tele.HandlerFunc {
	t.Helper()
	routes := TextRoutes(r, reg, TextOptions{})
	require.Len(t, routes, 1)
	assert.Equal(t, tele.OnText, routes[0].Endpoint)
	return routes[0].Handler
}

func TestIsNumericReply(t *testing.T) {
	for in, want := range map[string]bool{
		"1301":    true,
		" 1302\n": true,
		"12a":     false,
		"":        false,
		"   ":     false,
		"-1":      false,
		"١٢":      false,
		"1 2":     false,
	} {
		assert.Equal(t, want, IsNumericReply(in), "%q", in)
	}
}

func TestMixedTextNeverReachesResolver(t *testing.T) {
	res := &fakeResolver{consume: true}
	h := textHandler(t, res, echoRegistry())

	c := teletest.NewMessage(1, 2, "12a")
	require.NoError(t, h(c))
	assert.Empty(t, res.seen)
	assert.Equal(t, []string{"12a"}, c.Texts())
}

func TestConsumedReplySuppressesEcho(t *testing.T) {
	res := &fakeResolver{consume: true}
	h := textHandler(t, res, echoRegistry())

	c := teletest.NewMessage(1, 2, " 1302 ")
	require.NoError(t, h(c))
	assert.Equal(t, []string{" 1302 "}, res.seen)
	assert.Empty(t, c.Texts())
}

func TestUnconsumedDigitsFallThroughToEcho(t *testing.T) {
	res := &fakeResolver{}
	h := textHandler(t, res, echoRegistry())

	c := teletest.NewMessage(1, 2, "1302")
	require.NoError(t, h(c))
	assert.Len(t, res.seen, 1)
	assert.Equal(t, []string{"1302"}, c.Texts())
}

func TestResolverErrorIsReturned(t *testing.T) {
	want := errors.New("store down")
	h := textHandler(t, &fakeResolver{err: want}, echoRegistry())

	c := teletest.NewMessage(1, 2, "7")
	assert.ErrorIs(t, h(c), want)
	assert.Empty(t, c.Texts())
}

func TestSlashTextIsRoutedOrSkipped(t *testing.T) {
	h := textHandler(t, nil, echoRegistry())

	c := teletest.NewMessage(1, 2, "/start@sholatbot")
	require.NoError(t, h(c))
	assert.Equal(t, []string{"hello"}, c.Texts())

	c = teletest.NewMessage(1, 2, "/nope")
	require.NoError(t, h(c))
	assert.Empty(t, c.Texts(), "unknown commands are not echoed")
}

func TestSlashTextSkipsAdminCommands(t *testing.T) {
	reg := echoRegistry()
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     func(c tele.Context) error { return c.Send("stats") },
		Description: "stats",
		AdminOnly:   true,
		Aliases:     []string{"st"},
	})
	h := textHandler(t, nil, reg)

	c := teletest.NewMessage(1, 2, "/st")
	require.NoError(t, h(c))
	assert.Empty(t, c.Texts())
}

func TestCommandRoutesWrapAdminOnly(t *testing.T) {
	reg := echoRegistry()
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     func(c tele.Context) error { return c.Send("stats") },
		Description: "stats",
		AdminOnly:   true,
		Hidden:      true,
	})
	routes := CommandRoutes(reg, CommandRouteOptions{AdminID: 99})
	require.Len(t, routes, 2)

	byName := map[string]tele.HandlerFunc{}
	for _, r := range routes {
		byName[r.Endpoint.(string)] = r.Handler
	}

	c := teletest.NewMessage(1, 2, "/stats")
	require.NoError(t, byName["/stats"](c))
	assert.Empty(t, c.Texts())

	c = teletest.NewMessage(99, 99, "/stats")
	require.NoError(t, byName["/stats"](c))
	assert.Equal(t, []string{"stats"}, c.Texts())
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "upstream down" }

type apiErr struct{}

func (*apiErr) Error() string { return "api" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "", errorCode(nil))
	assert.Equal(t, "UPSTREAM_DOWN", errorCode(fmt.Errorf("wrap: %w", codedErr{})))
	assert.Equal(t, "APIERR", errorCode(fmt.Errorf("wrap: %w", &apiErr{})))
	assert.Equal(t, "UNKNOWN_ERROR", errorCode(errors.New("plain")))
}
