package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"convertbot/internal/models"
)

// handleStart handles the /start command
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	if !b.checkGate(ctx, message.Chat.ID, message.From.ID) {
		return
	}
	b.admit(ctx, message.Chat.ID, message.From, true)
}

// handleAdmin shows the admin panel
func (b *Bot) handleAdmin(ctx context.Context, message *tgbotapi.Message) {
	if !b.admins[message.From.ID] {
		b.logger.Warn("Unauthorized admin panel attempt",
			zap.Int64("user_id", message.From.ID),
			zap.String("username", message.From.UserName),
		)
		b.reply(message.Chat.ID, "Unknown command. Use /start to see available commands.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, panelText(message.From))
	msg.ReplyMarkup = adminPanelKeyboard()
	b.sendMessage(msg)
}

// admit runs after a successful gate pass: new users are onboarded and
// the welcome notice is sent once per session, or always when greet is set
func (b *Bot) admit(ctx context.Context, chatID int64, user *tgbotapi.User, greet bool) {
	if err := b.onboard(ctx, user); err != nil {
		b.logger.Error("Failed to onboard user", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	if greet {
		b.greet(ctx, chatID, user.ID)
		return
	}
	b.welcomeOnce(ctx, chatID, user.ID)
}

// onboard registers a user seen for the first time, announces them to the
// notification chat and bumps the active counter
func (b *Bot) onboard(ctx context.Context, user *tgbotapi.User) error {
	_, exists, err := b.db.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := b.db.AddUser(ctx, models.User{
		ID:       user.ID,
		FullName: fullName(user),
		Username: user.UserName,
	}); err != nil {
		return err
	}

	count, err := b.db.CountUsers(ctx)
	if err != nil {
		return err
	}

	b.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.UserName),
		zap.Int("total_users", count),
	)

	if b.opts.NotifyChatID != 0 {
		handle := "-"
		if user.UserName != "" {
			handle = "@" + user.UserName
		}
		b.reply(b.opts.NotifyChatID, fmt.Sprintf(
			"🆕 New user!\n🧑 Name: %s\n🌐 Username: %s\n🆔 User ID: %d\n➖➖➖➖➖➖➖➖\n⚙️ Total: %d",
			fullName(user), handle, user.ID, count,
		))
	}

	// The broadcast tally overwrites this counter; both share one row
	status, ok, err := b.db.GetStatus(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return b.db.SetActive(ctx, 1)
	}
	return b.db.SetActive(ctx, status.Active+1)
}
