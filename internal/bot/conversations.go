package bot

import (
	"context"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// adminState returns a copy of the admin's current state
func (b *Bot) adminState(userID int64) AdminState {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()

	if state, ok := b.states[userID]; ok {
		return *state
	}
	return AdminState{Step: AdminIdle}
}

func (b *Bot) setAdminState(userID int64, state AdminState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()

	if state.Step == AdminIdle {
		delete(b.states, userID)
		return
	}
	b.states[userID] = &state
}

func (b *Bot) resetAdminState(userID int64) {
	b.setAdminState(userID, AdminState{Step: AdminIdle})
}

// handleAdminInput advances the admin console with a message
func (b *Bot) handleAdminInput(ctx context.Context, message *tgbotapi.Message, state AdminState) {
	userID := message.From.ID
	chatID := message.Chat.ID

	if state.Step == AwaitingBroadcast {
		b.resetAdminState(userID)
		b.broadcast(ctx, message)
		return
	}

	// Every other step expects text
	text := strings.TrimSpace(message.Text)
	if text == "" {
		b.reply(chatID, "Please send text. Use /cancel to leave this step.")
		return
	}

	switch state.Step {
	case AwaitingChannelName:
		state.ChannelName = text
		state.Step = AwaitingChannelID
		b.setAdminState(userID, state)
		b.reply(chatID, "Enter the channel ID (for example -1001234567890 or @channel):")

	case AwaitingChannelID:
		state.ChannelID = text
		state.Step = AwaitingChannelLink
		b.setAdminState(userID, state)
		b.reply(chatID, "Enter the channel link:")

	case AwaitingChannelLink:
		link, ok := normalizeLink(text)
		if !ok || state.ChannelName == "" || state.ChannelID == "" {
			b.setAdminState(userID, AdminState{Step: AwaitingChannelName})
			b.reply(chatID, "Channel data is incorrect. Enter the channel name again:")
			return
		}

		b.resetAdminState(userID)
		channel, err := b.db.AddChannel(ctx, state.ChannelName, state.ChannelID, link)
		if err != nil {
			b.logger.Error("Failed to add channel",
				zap.Error(err),
				zap.String("name", state.ChannelName),
				zap.String("channel_id", state.ChannelID),
			)
			b.reply(chatID, "Could not add the channel. Please try again.")
			return
		}
		b.logger.Info("Channel added",
			zap.Int64("id", channel.ID),
			zap.String("name", channel.Name),
			zap.Int64("admin_id", userID),
		)
		b.reply(chatID, "Channel added successfully.")

	case AwaitingChannelDeletion:
		b.resetAdminState(userID)
		found, err := b.db.DeleteChannelByName(ctx, text)
		if err != nil {
			b.logger.Error("Failed to delete channel", zap.Error(err), zap.String("name", text))
			b.reply(chatID, "Could not delete the channel. Please try again.")
			return
		}
		if !found {
			b.reply(chatID, "Channel \""+text+"\" was not found.")
			return
		}
		b.logger.Info("Channel deleted", zap.String("name", text), zap.Int64("admin_id", userID))
		b.reply(chatID, "Channel \""+text+"\" was deleted.")
	}
}

// normalizeLink accepts an http(s) URL, a t.me link or an @username and
// returns an absolute URL usable on a button
func normalizeLink(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(raw, "@"):
		name := raw[1:]
		if name == "" || strings.ContainsAny(name, " /?#") {
			return "", false
		}
		return "https://t.me/" + name, true
	case strings.HasPrefix(raw, "t.me/"):
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}
