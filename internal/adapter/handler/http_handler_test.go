package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-bot/internal/adapter/storage"
	"github.com/rl1809/inventory-bot/internal/core/service"
	"github.com/rl1809/inventory-bot/internal/metrics"
)

type webhookClient struct {
	t        *testing.T
	handler  *HTTPHandler
	secret   string
	updateID int64
}

func (c *webhookClient) send(userID int64, text string) (*httptest.ResponseRecorder, SendMessage) {
	c.t.Helper()
	c.updateID++
	body := fmt.Sprintf(`{"update_id":%d,"message":{"message_id":1,"from":{"id":%d},"chat":{"id":%d},"text":%q}}`,
		c.updateID, userID, userID+1000, text)
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(body))
	if c.secret != "" {
		req.Header.Set(secretTokenHeader, c.secret)
	}
	rec := httptest.NewRecorder()
	c.handler.Webhook(rec, req)

	var out SendMessage
	if rec.Code == http.StatusOK && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestWebhook_SellFlowWithKeyboardAndAlarm(t *testing.T) {
	d, store := newTestDispatcher(t, nil)
	c := &webhookClient{t: t, handler: NewHTTPHandler(d, "")}

	c.send(7, "/start")
	c.send(7, testPassword)
	c.send(7, "/add Widget 10 new")
	c.send(7, "/limit Widget 3")

	rec, out := c.send(7, "/sell")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sendMessage", out.Method)
	assert.Equal(t, int64(1007), out.ChatID)
	require.NotNil(t, out.ReplyMarkup)
	assert.Equal(t, [][]KeyboardButton{{{Text: "Widget"}}}, out.ReplyMarkup.Keyboard)

	c.send(7, "Widget")
	_, out = c.send(7, "8")
	assert.Contains(t, out.Text, "Low stock")
	assert.Nil(t, out.ReplyMarkup)

	item, _ := store.Get("Widget")
	assert.Equal(t, 2, item.Quantity)
}

func TestWebhook_SecretToken(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	bad := &webhookClient{t: t, handler: NewHTTPHandler(d, "s3cr3t"), secret: "wrong"}
	rec, out := bad.send(1, "/help")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, out.Text)

	good := &webhookClient{t: t, handler: NewHTTPHandler(d, "s3cr3t"), secret: "s3cr3t"}
	rec, out = good.send(1, "/help")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, out.Text, "/view")
}

func TestWebhook_RejectsBadRequests(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)
	h := NewHTTPHandler(d, "")

	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest(http.MethodGet, "/telegram/webhook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString("{oops")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(`{"update_id":5}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestWebhook_DuplicateUpdateAcknowledged(t *testing.T) {
	d, _ := newTestDispatcher(t, &mockDedupe{seen: map[string]bool{}})
	h := NewHTTPHandler(d, "")
	body := `{"update_id":99,"message":{"message_id":1,"from":{"id":1},"chat":{"id":1},"text":"/help"}}`

	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(body)))
	assert.NotZero(t, rec.Body.Len())

	rec = httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	(&HTTPHandler{}).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWebhook_ConcurrentSellersShareOneStore(t *testing.T) {
	const (
		sellers = 20
		initial = 100
	)
	ctx := context.Background()

	repo, err := storage.NewFileAdapter(filepath.Join(t.TempDir(), "inventory.json"))
	require.NoError(t, err)
	store := service.NewInventoryStore(repo, discard)
	require.NoError(t, store.Load(ctx))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	engine := service.NewEngine(store, storage.NewMemorySessionRepository(),
		service.WithLogger(discard), service.WithMetrics(m), service.WithOpenAccess())
	h := NewHTTPHandler(NewDispatcher(engine, "", nil, m, discard), "")

	post := func(updateID, userID int, text string) int {
		body := fmt.Sprintf(`{"update_id":%d,"message":{"message_id":1,"from":{"id":%d},"chat":{"id":%d},"text":%q}}`,
			updateID, userID, userID, text)
		rec := httptest.NewRecorder()
		h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(body)))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, post(1, 1, fmt.Sprintf("/add Bolt %d new", initial)))

	var wg sync.WaitGroup
	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func(user int) {
			defer wg.Done()
			for j, text := range []string{"/sell", "Bolt", "3"} {
				if code := post(user*10+j, user, text); code != http.StatusOK {
					t.Errorf("user %d: status %d", user, code)
					return
				}
			}
		}(100 + i)
	}
	wg.Wait()

	item, ok := store.Get("Bolt")
	require.True(t, ok)
	assert.Equal(t, initial-3*sellers, item.Quantity)

	expected := fmt.Sprintf(`
# HELP inventory_bot_flows_completed_total Conversation flows that reached a store mutation, by action and outcome.
# TYPE inventory_bot_flows_completed_total counter
inventory_bot_flows_completed_total{action="add-new",outcome="ok"} 1
inventory_bot_flows_completed_total{action="sell",outcome="ok"} %d
`, sellers)
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected), "inventory_bot_flows_completed_total"))
}
