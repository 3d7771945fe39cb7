package helpers

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/telegram/sender"
	"github.com/m3rciful/sholatbot/core/telegram/teletest"
)

func TestSplitTextPrefersNewlines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("114. Surat panjang sekali ﷽\n")
	}
	text := b.String()

	chunks := SplitText(text, 4000)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, ch := range chunks {
		assert.LessOrEqual(t, UTF16Len(ch), 4000)
		assert.True(t, strings.HasSuffix(ch, "\n"))
		assert.True(t, utf8.ValidString(ch))
	}
}

func TestSplitTextWithoutNewlines(t *testing.T) {
	text := strings.Repeat("ب", 25)
	chunks := SplitText(text, 10)
	assert.Equal(t, []string{strings.Repeat("ب", 10), strings.Repeat("ب", 10), strings.Repeat("ب", 5)}, chunks)
	assert.Equal(t, []string{"short"}, SplitText("short", 10))
}

func TestSplitTextCountsUTF16Units(t *testing.T) {
	text := strings.Repeat("🕌", 6)
	assert.Equal(t, 12, UTF16Len(text))

	chunks := SplitText(text, 4)
	assert.Equal(t, []string{"🕌🕌", "🕌🕌", "🕌🕌"}, chunks)

	// A rune wider than the limit still makes progress.
	assert.Equal(t, []string{"🕌", "🕌"}, SplitText("🕌🕌", 1))
}

func TestSendLongKeepsOrderThroughDispatcher(t *testing.T) {
	d := sender.NewDispatcher(sender.Options{Workers: 4})
	SetDispatcher(d)
	t.Cleanup(func() { SetDispatcher(nil) })

	c := teletest.NewMessage(1, 2, "/listsurat")
	text := strings.Repeat("a\n", 2500)
	markup := &tele.ReplyMarkup{RemoveKeyboard: true}
	require.NoError(t, SendLong(c, text, &tele.SendOptions{ReplyMarkup: markup}))
	d.Close()

	sent := c.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, text, sent[0].Text()+sent[1].Text())
	assert.Nil(t, sent[0].SendOptions().ReplyMarkup)
	assert.Same(t, markup, sent[1].SendOptions().ReplyMarkup)
}

func TestSendMDWithoutDispatcherSendsInline(t *testing.T) {
	c := teletest.NewMessage(1, 2, "x")
	require.NoError(t, SendMD(c, "*hi*"))
	sent := c.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, tele.ModeMarkdown, sent[0].SendOptions().ParseMode)
}

func TestParseFlexibleDateIn(t *testing.T) {
	jkt := time.FixedZone("WIB", 7*3600)
	for _, in := range []string{"2026-10-20", "20.10.2026", "20/10/2026", "2026-10-20 04:30"} {
		d, ok := ParseFlexibleDateIn(in, jkt)
		require.True(t, ok, in)
		assert.Equal(t, "2026-10-20", d.Format("2006-01-02"), in)
		assert.Equal(t, jkt, d.Location())
	}
	_, ok := ParseFlexibleDateIn("besok", jkt)
	assert.False(t, ok)
}

func TestBuildContextCarriesMeta(t *testing.T) {
	c := teletest.NewMessage(10, 20, "x")
	ctx := WithHandler(c, "husna")
	got, ok := ContextFrom(c)
	require.True(t, ok)
	assert.Equal(t, ctx, got)
}

func TestNewContextSetsRIDAndIDs(t *testing.T) {
	c := teletest.NewMessage(10, 20, "x")
	chatID, userID := IDs(c)
	assert.Equal(t, int64(10), chatID)
	assert.Equal(t, int64(20), userID)

	ctx := NewContext(c)
	rid, _ := c.Get("rid").(string)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, logger.RIDFrom(ctx))
	assert.Equal(t, int64(10), logger.ChatIDFrom(ctx))
	assert.Equal(t, int64(20), logger.UserIDFrom(ctx))
	assert.Equal(t, ctx, BuildContext(c))
}
