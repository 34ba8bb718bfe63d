package bot

import (
	"context"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"convertbot/internal/convert"
	"convertbot/internal/staging"
)

// handleConvertCallback routes the action prompt buttons
func (b *Bot) handleConvertCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	switch query.Data {
	case callbackConvertPDF:
		b.buildDocument(ctx, chatID, userID)
	case callbackConvertZIP:
		b.buildArchive(ctx, chatID, userID)
	}
}

// buildDocument turns the staged images into one PDF, one page per image
func (b *Bot) buildDocument(ctx context.Context, chatID, userID int64) {
	sess, err := b.sessions.Get(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to load session", zap.Error(err), zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong. Please try again later.")
		return
	}
	images := b.staged(userID, sess.Images)
	if len(images) == 0 {
		if len(sess.Images) > 0 {
			if err := b.sessions.ClearImages(ctx, userID); err != nil {
				b.logger.Error("Failed to clear images", zap.Error(err), zap.Int64("user_id", userID))
			}
		}
		b.reply(chatID, "Please send images first.")
		return
	}

	output := staging.TempName(fmt.Sprintf("images_%d", userID), ".pdf")
	err = b.produce(chatID, output, "images.pdf", func(w io.Writer) error {
		return convert.ImagesToPDF(b.staging.Fs(), images, w)
	})
	if err != nil {
		b.logger.Error("Failed to build PDF",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int("images", len(images)),
		)
		b.reply(chatID, "Could not create the PDF. Please try again.")
		return
	}

	if err := b.sessions.ClearImages(ctx, userID); err != nil {
		b.logger.Error("Failed to clear images", zap.Error(err), zap.Int64("user_id", userID))
	}
	if err := b.staging.Remove(sess.Images...); err != nil {
		b.logger.Warn("Failed to remove staged images", zap.Error(err), zap.Int64("user_id", userID))
	}

	b.logger.Info("PDF delivered", zap.Int64("user_id", userID), zap.Int("pages", len(images)))
}

// buildArchive packs every staged file into one ZIP archive
func (b *Bot) buildArchive(ctx context.Context, chatID, userID int64) {
	sess, err := b.sessions.Get(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to load session", zap.Error(err), zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong. Please try again later.")
		return
	}
	files := b.staged(userID, sess.Files())
	if len(files) == 0 {
		if len(sess.Files()) > 0 {
			if err := b.sessions.ClearFiles(ctx, userID); err != nil {
				b.logger.Error("Failed to clear files", zap.Error(err), zap.Int64("user_id", userID))
			}
		}
		b.reply(chatID, "You have not sent any files.")
		return
	}

	output := staging.TempName(fmt.Sprintf("files_%d", userID), ".zip")
	err = b.produce(chatID, output, "files.zip", func(w io.Writer) error {
		return convert.FilesToZip(b.staging.Fs(), files, w)
	})
	if err != nil {
		b.logger.Error("Failed to build ZIP",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int("files", len(files)),
		)
		b.reply(chatID, "Could not create the ZIP archive. Please try again.")
		return
	}

	if err := b.sessions.ClearFiles(ctx, userID); err != nil {
		b.logger.Error("Failed to clear files", zap.Error(err), zap.Int64("user_id", userID))
	}
	if err := b.staging.Remove(sess.Files()...); err != nil {
		b.logger.Warn("Failed to remove staged files", zap.Error(err), zap.Int64("user_id", userID))
	}

	b.logger.Info("ZIP delivered", zap.Int64("user_id", userID), zap.Int("files", len(files)))
}

// staged keeps the names that are still present in the staging area.
// Entries whose file has gone are logged and skipped.
func (b *Bot) staged(userID int64, names []string) []string {
	present := make([]string, 0, len(names))
	for _, name := range names {
		if !b.staging.Exists(name) {
			b.logger.Warn("Staged file is missing, dropping it",
				zap.String("file", name),
				zap.Int64("user_id", userID),
			)
			continue
		}
		present = append(present, name)
	}
	return present
}

// produce writes a generated file, delivers it under filename and removes
// it again whatever the outcome
func (b *Bot) produce(chatID int64, output, filename string, write func(w io.Writer) error) error {
	defer func() {
		if err := b.staging.Remove(output); err != nil {
			b.logger.Warn("Failed to remove generated file", zap.Error(err), zap.String("file", output))
		}
	}()

	if err := b.writeStaged(output, write); err != nil {
		return err
	}
	return b.sendStagedFile(chatID, output, filename, "")
}
