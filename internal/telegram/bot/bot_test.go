package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Command(t *testing.T) {
	m := &tgbotapi.Message{
		MessageID: 5,
		From:      &tgbotapi.User{ID: 1},
		Chat:      &tgbotapi.Chat{ID: 2},
		Text:      "/Jobs@career_bot  Remote ",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 16}},
	}

	msg := Normalize(m)
	assert.Equal(t, "jobs", msg.Command)
	assert.Equal(t, "Remote", msg.Args)
	assert.Equal(t, int64(1), msg.UserID)
	assert.Equal(t, int64(2), msg.ChatID)
}

func TestNormalize_AudioFileTreatedAsVoice(t *testing.T) {
	m := &tgbotapi.Message{
		From:  &tgbotapi.User{ID: 1},
		Chat:  &tgbotapi.Chat{ID: 2},
		Audio: &tgbotapi.Audio{FileID: "a1", Duration: 9},
	}

	msg := Normalize(m)
	assert.Empty(t, msg.Command)
	require.NotNil(t, msg.Voice)
	assert.Equal(t, "a1", msg.Voice.FileID)
}

func TestCommands_CoverHelp(t *testing.T) {
	names := map[string]bool{}
	for _, c := range Commands() {
		names[c.Command] = true
	}
	for _, want := range []string{"start", "tailor", "interview", "schedule", "jobs", "report"} {
		assert.True(t, names[want], want)
	}
}
