package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rl1809/inventory-bot/internal/core/service"
	"github.com/rl1809/inventory-bot/internal/metrics"
	"github.com/rl1809/inventory-bot/internal/port"
)

var ErrDuplicateUpdate = errors.New("duplicate update")

// Message is one inbound chat message, already detached from its transport.
type Message struct {
	UpdateID  string // transport delivery id, used for de-duplication when set
	SessionID string
	Text      string
}

// Dispatcher turns raw chat text into engine input: it splits commands from
// free text and checks free text against the access password, so the engine
// only ever sees the outcome of the comparison.
type Dispatcher struct {
	engine   *service.Engine
	password string
	dedupe   port.UpdateDeduplicator
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewDispatcher(engine *service.Engine, password string, dedupe port.UpdateDeduplicator, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		engine:   engine,
		password: password,
		dedupe:   dedupe,
		metrics:  m,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Dispatch hands one message to the engine. The returned reply is always
// renderable; err is ErrDuplicateUpdate for redeliveries or wraps
// service.ErrPersistence when the inventory could not be saved.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (service.Reply, error) {
	logger := d.logger.With("request_id", uuid.NewString(), "session_id", msg.SessionID)

	if d.dedupe != nil && msg.UpdateID != "" {
		ok, err := d.dedupe.SetIdempotency(ctx, msg.UpdateID)
		if err != nil {
			// de-duplication is best effort; a Redis outage must not stop the bot
			logger.Warn("idempotency check failed", "update_id", msg.UpdateID, "error", err)
		} else if !ok {
			d.metrics.DuplicateUpdate()
			logger.Info("dropping redelivered update", "update_id", msg.UpdateID)
			return service.Reply{}, ErrDuplicateUpdate
		}
	}

	in := d.parse(msg.Text)
	if in.Command != "" {
		logger.Debug("command received", "command", in.Command, "args", len(in.Args))
	}

	reply, err := d.engine.Handle(ctx, msg.SessionID, in)
	if err != nil {
		logger.Error("handle message failed", "error", err)
	}
	return reply, err
}

func (d *Dispatcher) parse(text string) service.Inbound {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return service.Inbound{Text: text, PasswordMatched: d.passwordMatches(text)}
	}

	fields := strings.Fields(text)
	cmd := strings.TrimPrefix(fields[0], "/")
	// group chats address commands as /add@SomeBot
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return service.Inbound{Command: strings.ToLower(cmd), Args: fields[1:]}
}

func (d *Dispatcher) passwordMatches(text string) bool {
	if d.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(text), []byte(d.password)) == 1
}
