package bot

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"convertbot/internal/gate"
	"convertbot/internal/session"
	"convertbot/internal/staging"
	"convertbot/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, db storage.Storage, sessions session.Store, area *staging.Area, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	b := newBot(api, db, sessions, area, opts, logger)
	b.api = api
	return b, nil
}

// newBot wires the handlers around any transport
func newBot(tg Transport, db storage.Storage, sessions session.Store, area *staging.Area, opts Options, logger *zap.Logger) *Bot {
	admins := make(map[int64]bool)
	for _, id := range opts.AdminUserIDs {
		admins[id] = true
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Bot{
		tg:         tg,
		db:         db,
		sessions:   sessions,
		staging:    area,
		gate:       gate.New(db, chatMembers{tg: tg}, logger),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		admins:     admins,
		states:     make(map[int64]*AdminState),
		users:      make(map[int64]*userLock),
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}
