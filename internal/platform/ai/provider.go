package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/inkwell-labs/inkwell/pkg/config"
)

// Provider generates writing prompts and sentiment labels for journal
// entries. The concrete text-generation backend is a boundary collaborator;
// this client speaks the OpenAI-compatible chat completion shape and degrades
// to canned prompts when no API key is configured.
type Provider interface {
	WritingPrompt(ctx context.Context, mood string) (string, error)
	Sentiment(ctx context.Context, text string) (label string, score float64, err error)
}

type client struct {
	cfg  cfgpkg.AIConfig
	http *http.Client
	log  *zap.SugaredLogger
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) Provider {
	return &client{
		cfg:  cfg.AI,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

var fallbackPrompts = map[string]string{
	"happy":   "What made you smile today, and how can you carry that feeling into tomorrow?",
	"sad":     "Write a letter to yourself about what is weighing on you right now.",
	"anxious": "List the things you can control today, and one small step for each.",
	"calm":    "Describe this moment of calm in detail so you can revisit it later.",
	"angry":   "What triggered your anger today, and what would you tell a friend in the same spot?",
	"excited": "What are you looking forward to, and what does it mean to you?",
	"neutral": "Describe one ordinary moment from today that deserves to be remembered.",
}

func (c *client) WritingPrompt(ctx context.Context, mood string) (string, error) {
	if !c.cfg.Enabled() {
		if p, ok := fallbackPrompts[mood]; ok {
			return p, nil
		}
		return fallbackPrompts["neutral"], nil
	}

	prompt := fmt.Sprintf("Give one short journaling prompt (a single question, max 30 words) for someone feeling %s. Reply with the prompt only.", mood)
	out, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *client) Sentiment(ctx context.Context, text string) (string, float64, error) {
	if !c.cfg.Enabled() {
		return "", 0, nil
	}

	prompt := "Classify the sentiment of the following journal entry. Reply with JSON only, shaped {\"label\":\"positive|neutral|negative\",\"score\":0.0}:\n\n" + text
	out, err := c.complete(ctx, prompt)
	if err != nil {
		return "", 0, err
	}

	var parsed struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	// Models occasionally wrap the JSON in a code fence.
	out = strings.TrimSpace(strings.Trim(strings.TrimSpace(out), "`"))
	if i := strings.Index(out, "{"); i >= 0 {
		out = out[i:]
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return "", 0, fmt.Errorf("parse sentiment reply: %w", err)
	}
	return parsed.Label, parsed.Score, nil
}

func (c *client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai request: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("ai response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
