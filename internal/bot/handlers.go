package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HandleUpdate processes a single update from polling or webhook.
// Updates from the same user run one at a time.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if from := update.SentFrom(); from != nil {
		unlock := b.lockUser(from.ID)
		defer unlock()
	}

	// Handle regular messages
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}

	// Handle callback queries (inline keyboard button clicks)
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// lockUser blocks until the caller holds userID's lock
func (b *Bot) lockUser(userID int64) func() {
	b.usersMu.Lock()
	l, ok := b.users[userID]
	if !ok {
		l = &userLock{}
		b.users[userID] = l
	}
	l.refs++
	b.usersMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		b.usersMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.users, userID)
		}
		b.usersMu.Unlock()
	}
}

// handleMessage processes a single message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.reply(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	// Channel posts and service messages have no sender
	if message.From == nil || message.Chat == nil {
		return
	}
	userID := message.From.ID

	// Any command interrupts an ongoing admin flow
	if message.IsCommand() {
		b.resetAdminState(userID)

		switch message.Command() {
		case "start":
			b.handleStart(ctx, message)
		case "admin":
			b.handleAdmin(ctx, message)
		case "cancel":
			b.reply(message.Chat.ID, "Cancelled.")
		default:
			b.reply(message.Chat.ID, "Unknown command. Use /start to see available commands.")
		}
		return
	}

	if b.admins[userID] {
		if state := b.adminState(userID); state.Step != AdminIdle {
			b.handleAdminInput(ctx, message, state)
			return
		}
	}

	b.handleUpload(ctx, message)
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	// Answer the callback query to remove loading state
	if _, err := b.tg.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Debug("Failed to answer callback query", zap.Error(err))
	}

	if query.From == nil || query.Message == nil || query.Message.Chat == nil {
		return
	}

	// Handle callback based on prefix
	data := query.Data
	switch {
	case data == callbackGateRecheck:
		b.handleRecheck(ctx, query)
	case strings.HasPrefix(data, "convert:"):
		b.handleConvertCallback(ctx, query)
	case strings.HasPrefix(data, "admin:"), strings.HasPrefix(data, "export:"):
		if !b.admins[query.From.ID] {
			b.logger.Warn("Unauthorized callback query attempt",
				zap.Int64("user_id", query.From.ID),
				zap.String("username", query.From.UserName),
				zap.String("callback_data", data),
			)
			return
		}
		b.handleAdminCallback(ctx, query)
	default:
		b.logger.Debug("Unknown callback data", zap.String("callback_data", data))
	}
}
