package session

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/park285/cheese-web/internal/domain"
)

const (
	maxChatEntries = 200
	maxChatRunes   = 500

	defaultChatSender = "You"
)

type emojiRange struct{ lo, hi rune }

var emojiRanges = []emojiRange{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F1E0, 0x1F1FF},
}

// chatLog is append-only from the reader's point of view; the oldest entries fall off past the cap.
type chatLog struct {
	entries []domain.ChatEntry
}

func (c *chatLog) append(e domain.ChatEntry) domain.ChatEntry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	c.entries = append(c.entries, e)
	if over := len(c.entries) - maxChatEntries; over > 0 {
		c.entries = append([]domain.ChatEntry(nil), c.entries[over:]...)
	}
	return e
}

func (c *chatLog) snapshot() []domain.ChatEntry {
	return append([]domain.ChatEntry(nil), c.entries...)
}

func newChatEntry(sender, text string, typ domain.ChatType, now time.Time) domain.ChatEntry {
	return domain.ChatEntry{Sender: sender, Text: text, Type: typ, Timestamp: now.UTC()}
}

// ClassifyChat types user text as emoji when it is a single grapheme cluster starting in
// one of the pictograph, emoticon, transport or regional indicator blocks.
func ClassifyChat(text string) domain.ChatType {
	if uniseg.GraphemeClusterCount(text) != 1 {
		return domain.ChatMessage
	}
	r, _ := utf8.DecodeRuneInString(text)
	for _, er := range emojiRanges {
		if r >= er.lo && r <= er.hi {
			return domain.ChatEmoji
		}
	}
	return domain.ChatMessage
}

func normalizeChat(sender, text string) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxChatRunes {
		return "", "", ErrMessageTooLong
	}
	sender = strings.TrimSpace(sender)
	if sender == "" {
		sender = defaultChatSender
	}
	return sender, text, nil
}
