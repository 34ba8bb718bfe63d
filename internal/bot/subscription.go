package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"convertbot/internal/gate"
)

const (
	gatePromptText = "You are not subscribed to the channels yet!\nSubscribe to every channel below, then press Recheck."
	welcomeText    = "Welcome to the converter bot!\nSend photos to turn them into a PDF, or any files to pack them into a ZIP archive."
)

// chatMembers resolves membership through getChatMember
type chatMembers struct {
	tg Transport
}

func (m chatMembers) MemberStatus(ctx context.Context, chatID string, userID int64) (string, error) {
	member, err := m.tg.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: chatWithUser(chatID, userID),
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

// chatWithUser accepts either a numeric chat id or an @username
func chatWithUser(chatID string, userID int64) tgbotapi.ChatConfigWithUser {
	chatID = strings.TrimSpace(chatID)
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tgbotapi.ChatConfigWithUser{ChatID: id, UserID: userID}
	}
	if !strings.HasPrefix(chatID, "@") {
		chatID = "@" + chatID
	}
	return tgbotapi.ChatConfigWithUser{SuperGroupUsername: chatID, UserID: userID}
}

// checkGate runs the subscription check for an entry point and sends the
// subscription prompt when it fails. Administrators always pass.
func (b *Bot) checkGate(ctx context.Context, chatID, userID int64) bool {
	if b.admins[userID] {
		return true
	}

	var result gate.Result
	var err error
	if b.opts.GateChannelIndex != nil {
		result, err = b.gate.EvaluateAt(ctx, userID, *b.opts.GateChannelIndex)
	} else {
		result, err = b.gate.Evaluate(ctx, userID)
	}
	if err != nil {
		b.logger.Error("Failed to evaluate subscriptions", zap.Error(err), zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong. Please try again later.")
		return false
	}
	if result.Passed {
		return true
	}

	// The prompt always lists the whole registry
	if b.opts.GateChannelIndex != nil {
		full, err := b.gate.Evaluate(ctx, userID)
		if err != nil {
			b.logger.Error("Failed to evaluate subscriptions", zap.Error(err), zap.Int64("user_id", userID))
		} else {
			result = full
		}
	}

	msg := tgbotapi.NewMessage(chatID, gatePromptText)
	msg.ReplyMarkup = gateKeyboard(result.Checks)
	b.sendMessage(msg)
	return false
}

// handleRecheck re-evaluates the full registry for the recheck button
func (b *Bot) handleRecheck(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	result, err := b.gate.Evaluate(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to evaluate subscriptions", zap.Error(err), zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong. Please try again later.")
		return
	}

	if !result.Passed && !b.admins[userID] {
		b.editOrSend(chatID, query.Message.MessageID, gatePromptText, gateKeyboard(result.Checks))
		return
	}

	b.deleteMessage(chatID, query.Message.MessageID)
	b.admit(ctx, chatID, query.From, false)
}

// gateKeyboard renders one URL button per channel in registry order and a
// single recheck button
func gateKeyboard(checks []gate.Check) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(checks)+1)
	for _, check := range checks {
		mark := "❌"
		if check.Subscribed() {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(check.Channel.Name+" "+mark, check.Channel.Link),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Recheck", callbackGateRecheck),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// welcomeOnce greets the user the first time they pass the gate in a session
func (b *Bot) welcomeOnce(ctx context.Context, chatID, userID int64) {
	sess, err := b.sessions.Get(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to load session", zap.Error(err), zap.Int64("user_id", userID))
		return
	}
	if sess.Welcomed {
		return
	}
	b.greet(ctx, chatID, userID)
}

func (b *Bot) greet(ctx context.Context, chatID, userID int64) {
	b.reply(chatID, welcomeText)
	if err := b.sessions.MarkWelcomed(ctx, userID); err != nil {
		b.logger.Error("Failed to mark session welcomed", zap.Error(err), zap.Int64("user_id", userID))
	}
}
