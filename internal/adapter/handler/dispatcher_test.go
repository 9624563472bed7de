package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Parse(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	in := d.parse("  /ADD@InventoryBot Widget 5 new ")
	assert.Equal(t, "add", in.Command)
	assert.Equal(t, []string{"Widget", "5", "new"}, in.Args)

	in = d.parse("/view")
	assert.Equal(t, "view", in.Command)
	assert.Empty(t, in.Args)

	in = d.parse("Blue Widget")
	assert.Empty(t, in.Command)
	assert.Equal(t, "Blue Widget", in.Text)
	assert.False(t, in.PasswordMatched)

	in = d.parse(" " + testPassword + "\n")
	assert.True(t, in.PasswordMatched)
}

func TestDispatcher_EmptyPasswordNeverMatches(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)
	d.password = ""

	assert.False(t, d.parse("").PasswordMatched)
}

func TestDispatcher_LoginAndAdd(t *testing.T) {
	d, store := newTestDispatcher(t, nil)
	ctx := context.Background()
	send := func(text string) string {
		r, err := d.Dispatch(ctx, Message{SessionID: "42", Text: text})
		require.NoError(t, err)
		return r.Text
	}

	send("/start")
	assert.Contains(t, send("guess"), "Wrong password")
	assert.Contains(t, send(testPassword), "Access granted")

	send("/add new")
	send("Widget")
	send("10")
	send("3")

	item, ok := store.Get("Widget")
	require.True(t, ok)
	assert.Equal(t, 10, item.Quantity)
	require.NotNil(t, item.AlarmLimit)
	assert.Equal(t, 3, *item.AlarmLimit)
}

func TestDispatcher_DropsDuplicateUpdates(t *testing.T) {
	dedupe := &mockDedupe{seen: map[string]bool{}}
	d, _ := newTestDispatcher(t, dedupe)
	ctx := context.Background()

	_, err := d.Dispatch(ctx, Message{UpdateID: "1", SessionID: "42", Text: "/help"})
	require.NoError(t, err)

	_, err = d.Dispatch(ctx, Message{UpdateID: "1", SessionID: "42", Text: "/help"})
	assert.ErrorIs(t, err, ErrDuplicateUpdate)
}

func TestDispatcher_DedupeOutageFailsOpen(t *testing.T) {
	dedupe := &mockDedupe{seen: map[string]bool{}, err: errors.New("connection refused")}
	d, _ := newTestDispatcher(t, dedupe)

	r, err := d.Dispatch(context.Background(), Message{UpdateID: "1", SessionID: "42", Text: "/help"})
	require.NoError(t, err)
	assert.Contains(t, r.Text, "/start")
}
