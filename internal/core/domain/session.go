package domain

import "time"

type State int

const (
	StateIdle State = iota
	StateAwaitingPassword
	StateSelectingItem
	StateEnteringName
	StateEnteringQuantity
	StateEnteringAlarmLimit
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPassword:
		return "awaiting_password"
	case StateSelectingItem:
		return "selecting_item"
	case StateEnteringName:
		return "entering_name"
	case StateEnteringQuantity:
		return "entering_quantity"
	case StateEnteringAlarmLimit:
		return "entering_alarm_limit"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

type Action string

const (
	ActionNone   Action = ""
	ActionStart  Action = "start"
	ActionAdd    Action = "add"
	ActionAddNew Action = "add-new"
	ActionSell   Action = "sell"
	ActionLimit  Action = "limit"
	ActionRemove Action = "remove"

	// ActionDecrement is the one-shot /remove <item> <qty>; it has no flow.
	ActionDecrement Action = "decrement"
)

// Session is the per-user scratch record of an in-progress flow. It lives
// only in memory and is dropped when the flow reaches StateDone.
type Session struct {
	UserID    string
	State     State
	Action    Action
	Item      string
	NewItem   bool
	Quantity  int
	UpdatedAt time.Time
}

func NewSession(userID string, action Action, state State) Session {
	return Session{
		UserID:    userID,
		State:     state,
		Action:    action,
		NewItem:   action == ActionAddNew,
		UpdatedAt: time.Now(),
	}
}
