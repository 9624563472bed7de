package handler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rl1809/inventory-bot/internal/core/service"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Telegram Update, reduced to the fields the bot reads.
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *TelegramMessage `json:"message"`
}

type TelegramMessage struct {
	MessageID int64         `json:"message_id"`
	From      *TelegramUser `json:"from"`
	Chat      TelegramChat  `json:"chat"`
	Text      string        `json:"text"`
}

type TelegramUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type TelegramChat struct {
	ID int64 `json:"id"`
}

// SendMessage is returned in the webhook response body; Telegram executes
// it as if the bot had called the method itself.
type SendMessage struct {
	Method      string         `json:"method"`
	ChatID      int64          `json:"chat_id"`
	Text        string         `json:"text"`
	ReplyMarkup *ReplyKeyboard `json:"reply_markup,omitempty"`
}

type ReplyKeyboard struct {
	Keyboard        [][]KeyboardButton `json:"keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	RemoveKeyboard  bool               `json:"remove_keyboard,omitempty"`
}

type KeyboardButton struct {
	Text string `json:"text"`
}

type HTTPHandler struct {
	dispatcher *Dispatcher
	secret     string
}

func NewHTTPHandler(dispatcher *Dispatcher, webhookSecret string) *HTTPHandler {
	return &HTTPHandler{dispatcher: dispatcher, secret: webhookSecret}
}

func (h *HTTPHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(secretTokenHeader)), []byte(h.secret)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// edits, channel posts, stickers and the like are acknowledged and ignored
	if update.Message == nil || update.Message.Text == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	msg := update.Message
	sessionID := msg.Chat.ID
	if msg.From != nil {
		sessionID = msg.From.ID
	}

	reply, err := h.dispatcher.Dispatch(r.Context(), Message{
		UpdateID:  strconv.FormatInt(update.UpdateID, 10),
		SessionID: strconv.FormatInt(sessionID, 10),
		Text:      msg.Text,
	})
	if errors.Is(err, ErrDuplicateUpdate) {
		w.WriteHeader(http.StatusOK)
		return
	}
	// Telegram replays non-2xx deliveries; failures still carry a reply text.
	writeJSON(w, http.StatusOK, renderSendMessage(msg.Chat.ID, reply))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func renderSendMessage(chatID int64, reply service.Reply) SendMessage {
	out := SendMessage{Method: "sendMessage", ChatID: chatID, Text: reply.Text}
	if len(reply.Options) > 0 {
		rows := make([][]KeyboardButton, len(reply.Options))
		for i, name := range reply.Options {
			rows[i] = []KeyboardButton{{Text: name}}
		}
		out.ReplyMarkup = &ReplyKeyboard{Keyboard: rows, OneTimeKeyboard: true, ResizeKeyboard: true}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
