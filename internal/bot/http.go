package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HTTPServer serves the health endpoints and, in webhook mode, receives updates
type HTTPServer struct {
	bot         *Bot
	ctx         context.Context
	webhookMode bool
	inflight    sync.WaitGroup
}

// NewHTTPServer creates the HTTP handlers. Webhook updates are handled
// with ctx so shutdown cancels long-running work.
func NewHTTPServer(ctx context.Context, bot *Bot, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		ctx:         ctx,
		webhookMode: webhookMode,
	}
}

// RegisterRoutes registers the bot routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/telegram-webhook", hs.handleWebhook)
	mux.HandleFunc("/", hs.handleRoot)
}

// Wait blocks until every webhook update has been handled
func (hs *HTTPServer) Wait() {
	hs.inflight.Wait()
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (hs *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	mode := "polling"
	if hs.webhookMode {
		mode = "webhook"
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Converter Bot is running (mode: %s)", mode)
}

func (hs *HTTPServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		hs.bot.logger.Warn("Error decoding webhook update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Process update in background to respond quickly to Telegram
	hs.inflight.Add(1)
	go func() {
		defer hs.inflight.Done()
		hs.bot.HandleUpdate(hs.ctx, update)
	}()

	w.WriteHeader(http.StatusOK)
}
