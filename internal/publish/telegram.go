package publish

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramPublisher posts the finished video to a channel or chat.
type TelegramPublisher struct {
	botToken string
	chatID   int64
}

func NewTelegramPublisher(botToken string, chatID int64) *TelegramPublisher {
	return &TelegramPublisher{botToken: botToken, chatID: chatID}
}

func (t *TelegramPublisher) Platform() string {
	return "telegram"
}

func (t *TelegramPublisher) Publish(ctx context.Context, req *Request) (*Result, error) {
	bot, err := tgbotapi.NewBotAPI(t.botToken)
	if err != nil {
		return &Result{
			Success:  false,
			Platform: "telegram",
			Error:    fmt.Sprintf("bot init failed: %v", err),
		}, err
	}

	caption := req.Caption
	if caption == "" {
		caption = req.Title
	}

	msg := tgbotapi.NewVideo(t.chatID, tgbotapi.FilePath(req.VideoPath))
	msg.Caption = caption
	msg.SupportsStreaming = true

	sent, err := bot.Send(msg)
	if err != nil {
		return &Result{
			Success:  false,
			Platform: "telegram",
			Error:    err.Error(),
			Details:  map[string]string{"chat_id": fmt.Sprintf("%d", t.chatID)},
		}, fmt.Errorf("telegram post failed: %w", err)
	}

	return &Result{
		Success:  true,
		Platform: "telegram",
		Details: map[string]string{
			"message_id": fmt.Sprintf("%d", sent.MessageID),
		},
	}, nil
}
