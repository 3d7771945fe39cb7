package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickReplies(t *testing.T) {
	m := QuickReplies([]string{"1301", "1302", "1303", "1304"}, 3)
	assert.True(t, m.OneTimeKeyboard)
	assert.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, 2)
	assert.Len(t, m.ReplyKeyboard[0], 3)
	assert.Equal(t, "1304", m.ReplyKeyboard[1][0].Text)
}

func TestQuickRepliesClampsRowSize(t *testing.T) {
	m := QuickReplies([]string{"a", "b"}, 0)
	require.Len(t, m.ReplyKeyboard, 2)
	assert.Equal(t, "b", m.ReplyKeyboard[1][0].Text)
	assert.Empty(t, QuickReplies(nil, 3).ReplyKeyboard)
	assert.True(t, RemoveKeyboard().RemoveKeyboard)
}
