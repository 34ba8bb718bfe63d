package bot

import (
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"convertbot/internal/gate"
	"convertbot/internal/session"
	"convertbot/internal/staging"
	"convertbot/internal/storage"
)

// Transport is the subset of the Bot API the handlers use.
// *tgbotapi.BotAPI satisfies it.
type Transport interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Options carries the runtime settings of the bot
type Options struct {
	AdminUserIDs     []int64
	NotifyChatID     int64
	BroadcastDelay   time.Duration
	Location         *time.Location
	LaunchDate       time.Time
	GateChannelIndex *int // nil checks the full registry
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api        *tgbotapi.BotAPI // nil in tests; only the update loop needs it
	tg         Transport
	db         storage.Storage
	sessions   session.Store
	staging    *staging.Area
	gate       *gate.Gate
	httpClient *http.Client
	admins     map[int64]bool
	states     map[int64]*AdminState
	statesMu   sync.Mutex
	users      map[int64]*userLock
	usersMu    sync.Mutex
	opts       Options
	now        func() time.Time
	logger     *zap.Logger
}

// AdminStep is the position of an administrator in the console flow
type AdminStep int

const (
	AdminIdle AdminStep = iota
	AwaitingBroadcast
	AwaitingChannelName
	AwaitingChannelID
	AwaitingChannelLink
	AwaitingChannelDeletion
)

func (s AdminStep) String() string {
	switch s {
	case AwaitingBroadcast:
		return "awaiting_broadcast"
	case AwaitingChannelName:
		return "awaiting_channel_name"
	case AwaitingChannelID:
		return "awaiting_channel_id"
	case AwaitingChannelLink:
		return "awaiting_channel_link"
	case AwaitingChannelDeletion:
		return "awaiting_channel_deletion"
	default:
		return "idle"
	}
}

// AdminState tracks one administrator's console flow
type AdminState struct {
	Step        AdminStep
	ChannelName string
	ChannelID   string
}

// Callback data
const (
	callbackGateRecheck = "gate:recheck"

	callbackConvertPDF = "convert:pdf"
	callbackConvertZIP = "convert:zip"

	callbackAdminBroadcast  = "admin:send_message"
	callbackAdminStats      = "admin:stats"
	callbackAdminExport     = "admin:export"
	callbackAdminAddChannel = "admin:add_channel"
	callbackAdminChannels   = "admin:channels"
	callbackAdminBack       = "admin:go_back"

	callbackExportDB   = "export:db"
	callbackExportXLSX = "export:xlsx"
)

// userLock serializes one user's updates; refs counts holders and waiters
type userLock struct {
	mu   sync.Mutex
	refs int
}
