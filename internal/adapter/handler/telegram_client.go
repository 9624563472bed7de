package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const TelegramAPI = "https://api.telegram.org"

type setWebhookRequest struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// RegisterWebhook points the bot's updates at url. Telegram then echoes
// secret in the secret token header of every delivery.
func RegisterWebhook(ctx context.Context, client *http.Client, apiBase, token, url, secret string) error {
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(setWebhookRequest{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(apiBase, "/") + "/bot" + token + "/setWebhook"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build setWebhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		// the url embeds the token
		return errors.New("setWebhook: request failed")
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("setWebhook: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !out.OK {
		return fmt.Errorf("setWebhook: %s", out.Description)
	}
	return nil
}
