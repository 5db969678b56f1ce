package present

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/adapter"
)

// Publisher delivers the job listings of a report somewhere outside the terminal.
type Publisher interface {
	Publish(ctx context.Context, r *Report) error
}

// Ensure SlackPublisher implements Publisher.
var _ Publisher = (*SlackPublisher)(nil)

// SlackPublisher posts job listings to a Slack channel via Incoming Webhooks.
type SlackPublisher struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	gap        time.Duration // pause between messages
}

// NewSlackPublisher returns a publisher that posts each listing to Slack via webhook.
func NewSlackPublisher(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackPublisher {
	return &SlackPublisher{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		gap:        500 * time.Millisecond,
	}
}

// Publish sends each real listing as a separate Slack message using Block Kit.
// Placeholder listings are skipped. Returns an error only if ALL messages fail.
func (s *SlackPublisher) Publish(ctx context.Context, r *Report) error {
	var cards []JobCard
	for _, j := range r.Jobs {
		if !j.Placeholder {
			cards = append(cards, j)
		}
	}
	if len(cards) == 0 {
		return nil
	}

	failures := 0
	for i, j := range cards {
		if i > 0 {
			if err := sleep(ctx, s.gap); err != nil {
				return err
			}
		}

		if err := s.sendMessage(ctx, r.Goal, j); err != nil {
			s.logger.Error("slack message failed", "company", j.Company, "title", j.Title, "error", err)
			failures++
		}
	}

	if failures == len(cards) {
		return fmt.Errorf("all %d slack messages failed", failures)
	}
	s.logger.Info("slack publishing complete", "sent", len(cards)-failures, "failed", failures)
	return nil
}

func (s *SlackPublisher) sendMessage(ctx context.Context, goal string, j JobCard) error {
	body, err := json.Marshal(buildPayload(goal, j))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}

	if status == http.StatusTooManyRequests {
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		if err := sleep(ctx, retryAfter); err != nil {
			return err
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack message sent", "company", j.Company, "title", j.Title, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "company", j.Company, "title", j.Title)
	return nil
}

func (s *SlackPublisher) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, adapter.ParseRetryAfter(resp.Header.Get("Retry-After")), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func buildPayload(goal string, j JobCard) slackPayload {
	posted := j.Posted
	if posted == "" {
		posted = "Unknown"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: j.Company + ": " + j.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Company:*\n" + j.Company},
				{Type: "mrkdwn", Text: "*Location:*\n" + j.Location},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Posted:*\n" + posted},
				{Type: "mrkdwn", Text: "*Search:*\n" + goal},
			},
		},
	}

	if j.Description != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: j.Description},
		})
	}

	if j.URL != "" {
		blocks = append(blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "Apply Here"},
					URL:   j.URL,
					Style: "primary",
				},
			},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}
