package bot

import (
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sendMessage sends a message and logs delivery failures
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) (tgbotapi.Message, bool) {
	sent, err := b.tg.Send(msg)
	if err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
		return tgbotapi.Message{}, false
	}
	return sent, true
}

// reply sends plain text to a chat
func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// editOrSend replaces the text and keyboard of messageID, falling back to a
// new message when the edit is rejected
func (b *Bot) editOrSend(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
		_, err := b.tg.Request(edit)
		if err == nil {
			return
		}
		b.logger.Debug("Failed to edit message", zap.Error(err), zap.Int("message_id", messageID))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.sendMessage(msg)
}

// deleteMessage removes a message, ignoring failures
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.tg.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("Failed to delete message", zap.Error(err), zap.Int("message_id", messageID))
	}
}

// sendStagedFile uploads a staged file as a document named filename
func (b *Bot) sendStagedFile(chatID int64, name, filename, caption string) error {
	f, err := b.staging.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: filename, Reader: f})
	doc.Caption = caption
	_, err = b.tg.Send(doc)
	return err
}

// writeStaged creates name in the staging area and fills it with write
func (b *Bot) writeStaged(name string, write func(w io.Writer) error) error {
	f, err := b.staging.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// largestPhoto picks the variant with the biggest pixel area, preferring
// the later one on ties
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, p := range sizes[1:] {
		if p.Width*p.Height >= best.Width*best.Height {
			best = p
		}
	}
	return best
}

// fullName joins the first and last name of a Telegram user
func fullName(u *tgbotapi.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", callbackAdminBack),
		),
	)
}
