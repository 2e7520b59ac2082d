package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster posts the daily engagement digest to a Slack channel.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// Notify posts the digest for a freshly computed day.
func (p *Poster) Notify(ctx context.Context, date string, rows []engagement.Row) error {
	_, err := p.PostDailySummary(ctx, date, engagement.Summarize(rows))
	return err
}

// PostDailySummary posts the digest and returns the message timestamp (ts).
func (p *Poster) PostDailySummary(ctx context.Context, date string, summary engagement.Summary) (string, error) {
	text := formatDailySummary(date, summary)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted daily summary to slack", "ts", slackResp.TS, "date", date)
	return slackResp.TS, nil
}

func formatDailySummary(date string, s engagement.Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Engagement for %s*\n", date)
	fmt.Fprintf(&sb, "*Blocks measured:* %d\n\n", s.Rows)

	if len(s.Senders) == 0 {
		sb.WriteString("_No conversation blocks with a predecessor yet._")
		return sb.String()
	}

	for _, snd := range s.Senders {
		name := snd.DisplayName
		if name == "" {
			name = snd.SenderID
		}
		fmt.Fprintf(&sb, "*%s*: %d blocks, %d words, %d questions\n", name, snd.Blocks, snd.Words, snd.Questions)
		fmt.Fprintf(&sb, "   Response: %s | Pace: %s words/day | Readability: %s\n",
			formatDays(snd.MeanResponseTime), formatNumber(snd.MeanWordsPerDay), formatNumber(snd.MeanReadability))
	}

	return sb.String()
}

// formatDays renders a duration in days as hours when under one day.
func formatDays(days float64) string {
	if math.IsNaN(days) {
		return "n/a"
	}
	if days < 1 {
		return fmt.Sprintf("%.1fh", days*24)
	}
	return fmt.Sprintf("%.1fd", days)
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", f)
}
