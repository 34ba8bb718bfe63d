package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006  15:04:05"
)

// handleAdminCallback processes admin panel buttons
func (b *Bot) handleAdminCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	userID := query.From.ID

	switch query.Data {
	case callbackAdminBroadcast:
		b.setAdminState(userID, AdminState{Step: AwaitingBroadcast})
		b.editOrSend(chatID, messageID, "😉 Great! Send the message to broadcast.", backKeyboard())

	case callbackAdminStats:
		text, err := b.statsText(ctx)
		if err != nil {
			b.logger.Error("Failed to load statistics", zap.Error(err))
			b.reply(chatID, "Could not load statistics. Please try again.")
			return
		}
		b.editOrSend(chatID, messageID, text, backKeyboard())

	case callbackAdminExport:
		b.editOrSend(chatID, messageID, "🗂 Choose the export format", exportKeyboard())

	case callbackAdminAddChannel:
		b.setAdminState(userID, AdminState{Step: AwaitingChannelName})
		b.editOrSend(chatID, messageID, "Enter the new channel name:", backKeyboard())

	case callbackAdminChannels:
		b.showChannels(ctx, chatID, userID)

	case callbackAdminBack:
		b.resetAdminState(userID)
		b.editOrSend(chatID, messageID, panelText(query.From), adminPanelKeyboard())

	case callbackExportDB:
		b.deleteMessage(chatID, messageID)
		b.exportDatabase(ctx, chatID)

	case callbackExportXLSX:
		b.deleteMessage(chatID, messageID)
		b.exportUsers(ctx, chatID)
	}
}

// showChannels lists the registry and asks which channel to delete
func (b *Bot) showChannels(ctx context.Context, chatID, userID int64) {
	channels, err := b.db.ListChannels(ctx)
	if err != nil {
		b.logger.Error("Failed to list channels", zap.Error(err))
		b.reply(chatID, "Could not load channels. Please try again.")
		return
	}

	if len(channels) == 0 {
		b.reply(chatID, "There are no channels yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Channels:\n\n")
	for _, c := range channels {
		fmt.Fprintf(&sb, "Name: %s\nID: %s\nLink: %s\n\n", c.Name, c.ChatID, c.Link)
	}
	b.reply(chatID, sb.String())

	b.setAdminState(userID, AdminState{Step: AwaitingChannelDeletion})
	b.reply(chatID, "Send the name of the channel to delete.")
}

// statsText renders the counters and the launch timeline
func (b *Bot) statsText(ctx context.Context) (string, error) {
	status, _, err := b.db.GetStatus(ctx)
	if err != nil {
		return "", err
	}

	loc := b.opts.Location
	today := b.now().In(loc)
	launch := b.opts.LaunchDate.In(loc)

	return fmt.Sprintf(
		"📊 Bot statistics\n\n"+
			"✅ Active: %d\n"+
			"❌ Blocked: %d\n"+
			"🔰 Total: %d\n"+
			"➖➖➖➖➖➖➖➖\n"+
			"⏸ Launched: %s\n"+
			"📆 Today: %s\n"+
			"📆 Running for %d days",
		status.Active, status.Blocked, status.Total(),
		launch.Format(dateLayout), today.Format(dateLayout), daysBetween(launch, today),
	), nil
}

// daysBetween counts calendar days from a to b
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func panelText(u *tgbotapi.User) string {
	return fmt.Sprintf("Hello, %s!\n\n😊 What are we changing today?", fullName(u))
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Broadcast", callbackAdminBroadcast),
			tgbotapi.NewInlineKeyboardButtonData("📊 Statistics", callbackAdminStats),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗄 Export", callbackAdminExport),
			tgbotapi.NewInlineKeyboardButtonData("➕ Add channel", callbackAdminAddChannel),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Channels", callbackAdminChannels),
		),
	)
}

func exportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⚙️ Database | .db", callbackExportDB)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📑 Excel | .xlsx", callbackExportXLSX)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("◀️ Back", callbackAdminBack)),
	)
}
