package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
	"github.com/m3rciful/sholatbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryLookupAndList(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/jadwalsholat", commands.Command{Handler: noop, Description: "Jadwal sholat", Aliases: []string{"jadwal"}}))
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Stats", AdminOnly: true, Hidden: true}))
	require.NoError(t, reg.RegisterCommand("/maghrib", commands.Command{Handler: noop, Description: "Maghrib"}))
	assert.ErrorIs(t, reg.RegisterCommand("noslash", commands.Command{Handler: noop, Description: "x"}), ErrInvalidCommand)
	assert.ErrorIs(t, reg.RegisterCommand("/maghrib", commands.Command{Handler: noop, Description: "duplicate"}), ErrInvalidCommand)
	assert.ErrorIs(t, reg.RegisterCommand("/jadwal", commands.Command{Handler: noop, Description: "shadows alias"}), ErrInvalidCommand)
	assert.ErrorIs(t, reg.RegisterCommand("/sholat", commands.Command{Handler: noop, Description: "x", Aliases: []string{"/maghrib"}}), ErrInvalidCommand)
	assert.ErrorIs(t, reg.RegisterCommand("/empty", commands.Command{Description: "no handler"}), ErrInvalidCommand)

	require.Len(t, reg.Commands(), 3)
	assert.Equal(t, "Maghrib", reg.Commands()["/maghrib"].Description)

	visible := reg.ListCommands(true)
	require.Len(t, visible, 2)
	assert.Equal(t, "/jadwalsholat", visible[0].Text)
	assert.Equal(t, "/maghrib", visible[1].Text)
	assert.Len(t, reg.ListCommands(false), 3)

	for _, in := range []string{"/jadwalsholat", "jadwalsholat", "/jadwal", "/jadwalsholat@sholatbot"} {
		key, _, ok := reg.LookupCommand(in)
		assert.True(t, ok, in)
		assert.Equal(t, "/jadwalsholat", key, in)
	}
	_, _, ok := reg.LookupCommand("/unknown")
	assert.False(t, ok)
}

func TestBuildPollerModes(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeWebhook},
		Webhook:  coreconfig.WebhookConfig{Listen: "0.0.0.0", Port: 8443, URL: "https://example.org/hook", Secret: "s3cret"},
	}
	wh, ok := BuildPoller(PollerOptionsFrom(cfg)).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "s3cret", wh.SecretToken)
	assert.Equal(t, "https://example.org/hook", wh.Endpoint.PublicURL)
	assert.Equal(t, []string{"message"}, wh.AllowedUpdates)

	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, defaultLongPollTimeout, lp.Timeout)
}
