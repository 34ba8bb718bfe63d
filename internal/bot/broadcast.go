package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// broadcast relays message to every registered user, one at a time, and
// stores the delivery tally in the status row
func (b *Bot) broadcast(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	users, err := b.db.ListUsers(ctx)
	if err != nil {
		b.logger.Error("Failed to list users for broadcast", zap.Error(err))
		b.reply(chatID, "Could not load users. Please try again.")
		return
	}

	loc := b.opts.Location
	start := b.now().In(loc)
	progress, _ := b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"📨 Message received\n\n📤 To send: %d\n⏰ Started: %s",
		len(users), start.Format(dateTimeLayout),
	)))

	b.logger.Info("Broadcast started", zap.Int("recipients", len(users)))

	sent, failed := 0, 0
	for _, user := range users {
		if ctx.Err() != nil {
			b.logger.Warn("Broadcast interrupted", zap.Int("sent", sent), zap.Int("failed", failed))
			break
		}

		if _, err := b.tg.Send(relay(user.ID, message)); err != nil {
			failed++
			b.logger.Warn("Failed to deliver broadcast",
				zap.Error(err),
				zap.Int64("user_id", user.ID),
			)
		} else {
			sent++
		}

		b.pause(ctx)
	}

	// Tallies are stored even when shutdown stopped the loop early
	persistCtx := context.WithoutCancel(ctx)
	if err := b.db.SetActive(persistCtx, sent); err != nil {
		b.logger.Error("Failed to store active count", zap.Error(err))
	}
	if err := b.db.SetBlocked(persistCtx, failed); err != nil {
		b.logger.Error("Failed to store blocked count", zap.Error(err))
	}

	finish := b.now().In(loc)
	b.logger.Info("Broadcast finished",
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Duration("elapsed", finish.Sub(start)),
	)

	b.editOrSend(chatID, progress.MessageID, fmt.Sprintf(
		"📨 Broadcast finished\n\n"+
			"📤 Sent: %d/%d\n"+
			"⏰ Started: %s\n"+
			"⏰ Finished: %s\n"+
			"🕓 Elapsed: %d seconds",
		sent, sent+failed,
		start.Format(dateTimeLayout),
		finish.Format(dateTimeLayout),
		int(finish.Sub(start).Seconds()),
	), backKeyboard())
}

// pause waits BroadcastDelay between recipients
func (b *Bot) pause(ctx context.Context) {
	if b.opts.BroadcastDelay <= 0 {
		return
	}
	timer := time.NewTimer(b.opts.BroadcastDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// relay rebuilds message for chatID according to its content type
func relay(chatID int64, message *tgbotapi.Message) tgbotapi.Chattable {
	switch {
	case message.Text != "":
		msg := tgbotapi.NewMessage(chatID, message.Text)
		msg.Entities = message.Entities
		return msg

	case len(message.Photo) > 0:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(largestPhoto(message.Photo).FileID))
		photo.Caption = message.Caption
		photo.CaptionEntities = message.CaptionEntities
		return photo

	case message.Video != nil:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(message.Video.FileID))
		video.Caption = message.Caption
		video.CaptionEntities = message.CaptionEntities
		return video

	case message.Document != nil:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(message.Document.FileID))
		doc.Caption = message.Caption
		doc.CaptionEntities = message.CaptionEntities
		return doc

	case message.Audio != nil:
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FileID(message.Audio.FileID))
		audio.Caption = message.Caption
		audio.CaptionEntities = message.CaptionEntities
		return audio

	case message.Voice != nil:
		voice := tgbotapi.NewVoice(chatID, tgbotapi.FileID(message.Voice.FileID))
		voice.Caption = message.Caption
		voice.CaptionEntities = message.CaptionEntities
		return voice

	case message.Sticker != nil:
		return tgbotapi.NewSticker(chatID, tgbotapi.FileID(message.Sticker.FileID))

	default:
		return tgbotapi.NewCopyMessage(chatID, message.Chat.ID, message.MessageID)
	}
}
