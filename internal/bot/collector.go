package bot

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"convertbot/internal/session"
	"convertbot/internal/staging"
)

// handleUpload stages a photo or document and refreshes the action prompt
func (b *Bot) handleUpload(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	if !b.checkGate(ctx, chatID, userID) {
		return
	}
	b.admit(ctx, chatID, message.From, false)

	var sess session.Session
	var err error
	switch {
	case len(message.Photo) > 0:
		photo := largestPhoto(message.Photo)
		name := staging.PhotoName()
		if err := b.download(ctx, photo.FileID, name); err != nil {
			b.logger.Error("Failed to download photo", zap.Error(err), zap.Int64("user_id", userID))
			b.reply(chatID, "Could not save the photo. Please send it again.")
			return
		}
		sess, err = b.sessions.AddImage(ctx, userID, name)

	case message.Document != nil:
		doc := message.Document
		name := staging.DocumentName(userID, doc.FileUniqueID, doc.FileName)
		if err := b.download(ctx, doc.FileID, name); err != nil {
			b.logger.Error("Failed to download document", zap.Error(err), zap.Int64("user_id", userID))
			b.reply(chatID, "Could not save the document. Please send it again.")
			return
		}
		sess, err = b.sessions.Get(ctx, userID)
		// The same upload overwrites its staged copy without a second entry
		if err == nil && !slices.Contains(sess.Documents, name) {
			sess, err = b.sessions.AddDocument(ctx, userID, name)
		}

	default:
		b.reply(chatID, "Please send a photo or a document.")
		return
	}

	if err != nil {
		b.logger.Error("Failed to update session", zap.Error(err), zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong. Please try again later.")
		return
	}

	b.renderPrompt(ctx, chatID, userID, sess)
}

// download fetches a Telegram file into the staging area
func (b *Bot) download(ctx context.Context, fileID, name string) error {
	url, err := b.tg.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file %s: unexpected status %s", fileID, resp.Status)
	}
	return b.staging.Save(name, resp.Body)
}

// renderPrompt keeps a single action prompt per user up to date
func (b *Bot) renderPrompt(ctx context.Context, chatID, userID int64, sess session.Session) {
	text := promptText(sess)
	markup := actionKeyboard()

	if sess.PromptMessageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, sess.PromptMessageID, text, markup)
		if _, err := b.tg.Request(edit); err == nil {
			return
		}
		b.logger.Debug("Prompt edit failed, sending a new one", zap.Int64("user_id", userID))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	sent, ok := b.sendMessage(msg)
	if !ok {
		return
	}
	if err := b.sessions.SetPrompt(ctx, userID, sent.MessageID); err != nil {
		b.logger.Error("Failed to record prompt", zap.Error(err), zap.Int64("user_id", userID))
	}
}

func promptText(sess session.Session) string {
	return fmt.Sprintf(
		"Files received: %d photos, %d documents.\nSend everything you need, then choose an action.",
		len(sess.Images), len(sess.Documents),
	)
}

func actionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📄 Create PDF", callbackConvertPDF)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🗜 Create ZIP", callbackConvertZIP)),
	)
}
