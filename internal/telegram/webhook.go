package telegram

import (
	"encoding/json"
	"net/http"
	"strings"

	"kinobot/internal/httpserver"
	"log/slog"
)

type WebhookDeps struct {
	Dispatcher    Dispatcher
	Logger        *slog.Logger
	WebhookSecret string
}

// WebhookHandler принимает Telegram Update, переводит его в Event и
// отдаёт диспетчеру бота. Telegram всегда получает 200, чтобы не
// зациклить повторную доставку апдейта.
type WebhookHandler struct {
	dispatcher    Dispatcher
	logger        *slog.Logger
	webhookSecret string
}

func NewWebhookHandler(deps WebhookDeps) *WebhookHandler {
	return &WebhookHandler{
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		webhookSecret: deps.WebhookSecret,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret != "" {
		if secret := r.Header.Get("X-Telegram-Bot-Api-Secret-Token"); secret != h.webhookSecret {
			httpserver.WriteJSONError(w, http.StatusForbidden, "forbidden", "invalid webhook secret")
			return
		}
	}

	var upd Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		httpserver.WriteJSONError(w, http.StatusBadRequest, "bad_request", "cannot parse update")
		return
	}

	ctx := r.Context()

	switch {
	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		cb := upd.CallbackQuery
		ev := Event{
			Kind:       EventCallback,
			UserID:     cb.From.ID,
			CallbackID: cb.ID,
			Data:       cb.Data,
		}
		if cb.Message != nil {
			ev.ChatID = cb.Message.Chat.ID
			ev.MessageID = cb.Message.MessageID
		}
		h.dispatcher.Dispatch(ctx, ev)

	case upd.Message != nil && upd.Message.From != nil:
		text := strings.TrimSpace(upd.Message.Text)
		if text == "" {
			break
		}
		h.dispatcher.Dispatch(ctx, classifyMessage(upd.Message, text))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"ok":true}`))
}
