package domain

import "errors"

// ErrCorruptSnapshot marks a persisted inventory that could not be decoded.
var ErrCorruptSnapshot = errors.New("corrupt inventory snapshot")

type Item struct {
	Name       string `json:"-"`
	Quantity   int    `json:"quantity"`
	AlarmLimit *int   `json:"alarm_limit"` // nil: never alarm
}

// Low reports whether the item has dropped below its alarm limit.
func (i Item) Low() bool {
	return IsLow(i.Quantity, i.AlarmLimit)
}

// IsLow is true iff a limit is set and quantity is strictly below it.
func IsLow(quantity int, limit *int) bool {
	return limit != nil && quantity < *limit
}

func Limit(v int) *int {
	return &v
}

// Clone copies the item so the alarm limit pointer is not shared.
func (i Item) Clone() Item {
	if i.AlarmLimit != nil {
		i.AlarmLimit = Limit(*i.AlarmLimit)
	}
	return i
}

// CloneItems deep-copies an item map, re-stamping names from the keys.
func CloneItems(items map[string]Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for name, item := range items {
		item = item.Clone()
		item.Name = name
		out[name] = item
	}
	return out
}
