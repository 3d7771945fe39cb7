package keyboard

import (
	"slices"

	tele "gopkg.in/telebot.v4"
)

// RemoveKeyboard hides any reply keyboard shown to the user.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// QuickReplies lays labels out perRow to a row as a one-time reply keyboard.
// Tapping a button sends its label back as plain text.
func QuickReplies(labels []string, perRow int) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	rows := make([]tele.Row, 0, len(labels)/max(perRow, 1)+1)
	for chunk := range slices.Chunk(labels, max(perRow, 1)) {
		row := make(tele.Row, len(chunk))
		for i, label := range chunk {
			row[i] = m.Text(label)
		}
		rows = append(rows, row)
	}
	m.Reply(rows...)
	return m
}
