package telegram

import (
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestSendMessage(t *testing.T) {
	fs := &fakeSender{}
	c := &Client{s: fs}

	require.NoError(t, c.SendMessage(42, "HIGH alert"))
	require.Len(t, fs.sent, 1)
	msg := fs.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "HIGH alert", msg.Text)
}

func TestSendMessageSplitsLongText(t *testing.T) {
	fs := &fakeSender{}
	c := &Client{s: fs}

	line := strings.Repeat("a", 99) + "\n"
	require.NoError(t, c.SendMessage(1, strings.Repeat(line, 50)))

	require.Len(t, fs.sent, 2)
	first := fs.sent[0].(tgbotapi.MessageConfig).Text
	assert.LessOrEqual(t, len([]rune(first)), maxMessageLen)
	assert.True(t, strings.HasSuffix(first, "\n"))
}

func TestSendDocument(t *testing.T) {
	fs := &fakeSender{}
	c := &Client{s: fs}

	require.NoError(t, c.SendDocument(7, []byte("%PDF"), "report.pdf"))
	doc := fs.sent[0].(tgbotapi.DocumentConfig)
	assert.Equal(t, int64(7), doc.ChatID)
	file := doc.File.(tgbotapi.FileBytes)
	assert.Equal(t, "report.pdf", file.Name)
}

func TestSendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("forbidden")
	c := &Client{s: &fakeSender{err: boom}}

	assert.ErrorIs(t, c.SendMessage(1, "x"), boom)
	assert.ErrorIs(t, c.SendDocument(1, nil, "r.pdf"), boom)
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}
