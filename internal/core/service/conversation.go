package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/rl1809/inventory-bot/internal/core/domain"
	"github.com/rl1809/inventory-bot/internal/metrics"
	"github.com/rl1809/inventory-bot/internal/port"
)

// Inbound is one message after the transport has split it into a command
// (without the leading slash) and its arguments, or plain text. The password
// comparison happens outside; only its outcome is passed in.
type Inbound struct {
	Command         string
	Args            []string
	Text            string
	PasswordMatched bool
}

type Reply struct {
	Text    string
	Options []string // item names offered for selection
	Alarm   bool     // a low-stock warning was appended
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithOpenAccess treats every user as authorized. Used when no access
// password is configured.
func WithOpenAccess() Option {
	return func(e *Engine) { e.openAccess = true }
}

// Engine drives the per-user add/sell/limit/remove conversations. Sessions
// of different users are independent; all of them share one store.
type Engine struct {
	store      *InventoryStore
	sessions   port.SessionRepository
	metrics    *metrics.Metrics
	logger     *slog.Logger
	openAccess bool

	authMu     sync.RWMutex
	authorized map[string]bool
}

func NewEngine(store *InventoryStore, sessions port.SessionRepository, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		sessions:   sessions,
		logger:     slog.Default(),
		authorized: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

func (e *Engine) IsAuthorized(sessionID string) bool {
	if e.openAccess {
		return true
	}
	e.authMu.RLock()
	defer e.authMu.RUnlock()
	return e.authorized[sessionID]
}

// Handle performs exactly one transition for the session and returns the
// reply to send. A non-nil error is returned only when the inventory could
// not be persisted; the reply then still carries a user-facing message.
func (e *Engine) Handle(ctx context.Context, sessionID string, in Inbound) (Reply, error) {
	if in.Command != "" {
		e.metrics.Command(in.Command)
		// any command abandons the flow in progress
		e.sessions.Delete(sessionID)
		return e.command(ctx, sessionID, in)
	}

	sess, ok := e.sessions.Get(sessionID)
	if !ok {
		return Reply{Text: msgNoSession}, nil
	}
	return e.step(ctx, sess, strings.TrimSpace(in.Text), in.PasswordMatched)
}

func (e *Engine) command(ctx context.Context, sessionID string, in Inbound) (Reply, error) {
	switch in.Command {
	case "start":
		if e.openAccess {
			return Reply{Text: msgAuthorized}, nil
		}
		return e.begin(sessionID, domain.ActionStart), nil
	case "help":
		return Reply{Text: msgHelp}, nil
	case "cancel":
		return Reply{Text: msgCancelled}, nil
	}

	if !e.IsAuthorized(sessionID) {
		return Reply{Text: msgUnauthorized}, nil
	}

	args := in.Args
	switch in.Command {
	case "view":
		return e.view(args), nil
	case "add":
		if len(args) > 0 && e.keyword(args[0], "new") {
			if len(args) == 1 {
				return e.begin(sessionID, domain.ActionAddNew), nil
			}
			// /add new <name> skips the name prompt
			sess := domain.NewSession(sessionID, domain.ActionAddNew, domain.StateEnteringQuantity)
			sess.Item = strings.Join(args[1:], " ")
			e.sessions.Save(sess)
			return e.prompt(sess, ""), nil
		}
		if len(args) >= 2 {
			if qty, ok := parseAmount(args[1]); ok {
				sess := domain.NewSession(sessionID, domain.ActionAdd, domain.StateEnteringQuantity)
				if len(args) > 2 && e.keyword(args[2], "new") {
					sess = domain.NewSession(sessionID, domain.ActionAddNew, domain.StateEnteringQuantity)
				}
				sess.Item, sess.Quantity = args[0], qty
				return e.commit(ctx, sess, nil)
			}
		}
		return e.begin(sessionID, domain.ActionAdd), nil
	case "sell":
		if len(args) >= 2 {
			if qty, ok := parseAmount(args[1]); ok {
				sess := domain.NewSession(sessionID, domain.ActionSell, domain.StateEnteringQuantity)
				sess.Item, sess.Quantity = args[0], qty
				return e.commit(ctx, sess, nil)
			}
		}
		return e.begin(sessionID, domain.ActionSell), nil
	case "limit":
		if len(args) >= 2 {
			if limit, ok := parseAmount(args[1]); ok {
				sess := domain.NewSession(sessionID, domain.ActionLimit, domain.StateEnteringAlarmLimit)
				sess.Item = args[0]
				return e.commit(ctx, sess, domain.Limit(limit))
			}
		}
		return e.begin(sessionID, domain.ActionLimit), nil
	case "remove":
		if len(args) == 0 {
			return e.begin(sessionID, domain.ActionRemove), nil
		}
		sess := domain.NewSession(sessionID, domain.ActionRemove, domain.StateSelectingItem)
		sess.Item = args[0]
		if len(args) == 1 || e.keyword(args[len(args)-1], "totally") {
			return e.commit(ctx, sess, nil)
		}
		qty, ok := parseAmount(args[1])
		if !ok {
			return e.begin(sessionID, domain.ActionRemove), nil
		}
		sess.Action, sess.Quantity = domain.ActionDecrement, qty
		return e.commit(ctx, sess, nil)
	}

	return Reply{Text: fmt.Sprintf("Unknown command /%s. Use /help to see available commands.", in.Command)}, nil
}

// begin creates a fresh session at the entry state of action.
func (e *Engine) begin(sessionID string, action domain.Action) Reply {
	sess := domain.NewSession(sessionID, action, entryState(action))
	e.sessions.Save(sess)
	e.logger.Debug("flow started", "session_id", sessionID, "action", string(action), "state", sess.State.String())
	return e.prompt(sess, "")
}

func (e *Engine) prompt(sess domain.Session, prefix string) Reply {
	var options []string
	if sess.State == domain.StateSelectingItem {
		options = e.store.Names()
	}
	return Reply{Text: prefix + promptFor(sess, len(options) > 0), Options: options}
}

func (e *Engine) step(ctx context.Context, sess domain.Session, text string, passwordMatched bool) (Reply, error) {
	var limit *int

	switch sess.State {
	case domain.StateAwaitingPassword:
		if !passwordMatched {
			e.logger.Info("wrong password", "session_id", sess.UserID)
			return Reply{Text: msgWrongPass}, nil
		}
		e.authMu.Lock()
		e.authorized[sess.UserID] = true
		e.authMu.Unlock()
		e.sessions.Delete(sess.UserID)
		e.logger.Info("user authorized", "session_id", sess.UserID)
		return Reply{Text: msgAuthorized}, nil

	case domain.StateSelectingItem, domain.StateEnteringName:
		if text == "" {
			return e.prompt(sess, ""), nil
		}
		// the selection is taken verbatim; unknown names surface as not found on commit
		sess.Item = text

	case domain.StateEnteringQuantity:
		qty, ok := parseAmount(text)
		if !ok {
			return e.prompt(sess, notNumber(text)), nil
		}
		sess.Quantity = qty

	case domain.StateEnteringAlarmLimit:
		n, ok := parseAmount(text)
		if !ok {
			return e.prompt(sess, notNumber(text)), nil
		}
		limit = domain.Limit(n)

	default:
		e.sessions.Delete(sess.UserID)
		return Reply{Text: msgNoSession}, nil
	}

	next := nextState(sess.Action, sess.State)
	if next == domain.StateDone {
		return e.commit(ctx, sess, limit)
	}

	e.logger.Debug("transition", "session_id", sess.UserID, "action", string(sess.Action), "from", sess.State.String(), "to", next.String())
	sess.State = next
	sess.UpdatedAt = time.Now()
	e.sessions.Save(sess)
	return e.prompt(sess, ""), nil
}

// commit performs the single store mutation of a flow and ends the session.
func (e *Engine) commit(ctx context.Context, sess domain.Session, limit *int) (Reply, error) {
	e.sessions.Delete(sess.UserID)

	var (
		reply Reply
		err   error
	)
	switch sess.Action {
	case domain.ActionAdd:
		if err = e.store.Add(ctx, sess.Item, sess.Quantity, false); err == nil {
			reply.Text = fmt.Sprintf("Added %d of '%s' to the inventory.", sess.Quantity, sess.Item)
		}
	case domain.ActionAddNew:
		if err = e.store.Put(ctx, domain.Item{Name: sess.Item, Quantity: sess.Quantity, AlarmLimit: limit}); err == nil {
			reply.Text = fmt.Sprintf("Created '%s' with quantity %d.", sess.Item, sess.Quantity)
			if limit != nil {
				reply.Text += fmt.Sprintf(" Alarm limit set to %d.", *limit)
			}
		}
	case domain.ActionSell, domain.ActionDecrement:
		var item domain.Item
		if item, err = e.store.Remove(ctx, sess.Item, sess.Quantity, false); err == nil {
			verb := "Sold"
			if sess.Action == domain.ActionDecrement {
				verb = "Removed"
			}
			reply.Text = fmt.Sprintf("%s %d of '%s'. %d left.", verb, sess.Quantity, sess.Item, item.Quantity)
			if item.Low() {
				reply.Text += "\n" + lowStockWarning(item)
				reply.Alarm = true
				e.metrics.LowStock()
			}
		}
	case domain.ActionLimit:
		if err = e.store.UpdateAlarmLimit(ctx, sess.Item, *limit); err == nil {
			reply.Text = fmt.Sprintf("Alarm limit for '%s' set to %d.", sess.Item, *limit)
		}
	case domain.ActionRemove:
		if _, err = e.store.Remove(ctx, sess.Item, 0, true); err == nil {
			reply.Text = fmt.Sprintf("Removed '%s' from the inventory.", sess.Item)
		}
	}

	action := string(sess.Action)
	switch {
	case err == nil:
		e.metrics.FlowCompleted(action, metrics.OutcomeOK)
		e.logger.Info("inventory updated", "session_id", sess.UserID, "action", action, "item", sess.Item)
		return reply, nil
	case errors.Is(err, ErrNotFound):
		e.metrics.FlowCompleted(action, metrics.OutcomeNotFound)
		return Reply{Text: notFound(sess.Item)}, nil
	default:
		e.metrics.FlowCompleted(action, metrics.OutcomeError)
		return Reply{Text: msgInternal}, fmt.Errorf("%s %q: %w", action, sess.Item, err)
	}
}

func (e *Engine) view(args []string) Reply {
	full := len(args) > 0 && e.keyword(args[len(args)-1], "full")
	if full {
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return Reply{Text: formatInventory(e.store.List(), full)}
	}

	name := strings.Join(args, " ")
	item, ok := e.store.Get(name)
	if !ok {
		return Reply{Text: fmt.Sprintf("Item '%s' not found in inventory.", name)}
	}
	return Reply{Text: formatItem(item, full)}
}

// keyword matches command arguments such as "new" or "full" case-insensitively.
// A Caser is stateful, so one is built per call.
func (e *Engine) keyword(arg, kw string) bool {
	return cases.Fold().String(arg) == kw
}

// parseAmount accepts non-negative base-10 integers.
func parseAmount(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
