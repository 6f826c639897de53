package reminder

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends reminders through a Telegram bot.
// The user ID is used as the chat ID.
type TelegramNotifier struct {
	sender messageSender
}

// NewTelegramNotifier authenticates the bot with the given token.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("tgbotapi.NewBotAPI > %w", err)
	}
	return &TelegramNotifier{sender: bot}, nil
}

func (n *TelegramNotifier) NotifyDue(ctx context.Context, userID int64, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(userID, reminderText(count))
	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("bot.Send(chat %d) > %w", userID, err)
	}
	return nil
}
