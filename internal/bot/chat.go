package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// chat sends replies to the chat a message came from.
type chat struct {
	tg     BotAPI
	id     int64
	userID int64
}

func (c *chat) send(msg tgbotapi.Chattable) tgbotapi.Message {
	sent, err := c.tg.Send(msg)
	if err != nil {
		log.Error().Err(fmt.Errorf("failed to send reply message: %w", err)).Int64("chatId", c.id).Send()
	}
	return sent
}

func (c *chat) reply(text string, a ...any) tgbotapi.Message {
	msg := tgbotapi.NewMessage(c.id, formatReplyText(text, a...))
	msg.ParseMode = tgbotapi.ModeMarkdown
	return c.send(msg)
}

func (c *chat) replyWithError(err error) tgbotapi.Message {
	log.Error().Err(err).Int64("userId", c.userID).Send()
	return c.reply(MsgUnexpectedErr, escapeMarkdown(err.Error()))
}

// keepTyping sends a typing action every 4 seconds until stop is called.
// The indicator expires after about 5 seconds on Telegram's side.
func (c *chat) keepTyping() (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()
		for {
			if _, err := c.tg.Request(tgbotapi.NewChatAction(c.id, tgbotapi.ChatUploadPhoto)); err != nil {
				log.Debug().Err(err).Int64("chatId", c.id).Msg("failed to send typing action")
			}
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
	return func() { close(done) }
}
