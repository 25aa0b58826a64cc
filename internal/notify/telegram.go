// Package notify pushes high-confidence detections to a Telegram chat.
package notify

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spoilershield/internal/model"
)

// DefaultThreshold is the minimum confidence that triggers an alert.
const DefaultThreshold = 0.90

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Alerter sends one Telegram message per item whose detection confidence
// reaches the threshold.
type Alerter struct {
	api       telegramAPI
	chatID    int64
	threshold float64
	log       *slog.Logger
}

// New creates an Alerter with the given Telegram token and target chat.
func New(token string, chatID int64, threshold float64, log *slog.Logger) (*Alerter, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Alerter{api: api, chatID: chatID, threshold: threshold, log: log}, nil
}

// Notify sends alerts for every qualifying item and reports how many were
// sent. Items without a detection result are skipped.
func (a *Alerter) Notify(items []model.ContentItem) int {
	sent := 0
	for _, item := range items {
		if item.Detection == nil || item.Detection.Confidence < a.threshold {
			continue
		}
		msg := tgbotapi.NewMessage(a.chatID, FormatAlert(item))
		msg.DisableWebPagePreview = true
		if _, err := a.api.Send(msg); err != nil {
			a.log.Error("send alert", "chat_id", a.chatID, "item", item.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// FormatAlert formats one flagged item as a Telegram alert message. Items
// without a detection result are formatted without the confidence line.
func FormatAlert(item model.ContentItem) string {
	var b strings.Builder
	if item.Detection != nil {
		fmt.Fprintf(&b, "[%s] spoiler alert (%.0f%%)\n\n", item.SourceID, item.Detection.Confidence*100)
	} else {
		fmt.Fprintf(&b, "[%s] spoiler alert\n\n", item.SourceID)
	}
	b.WriteString(item.Title)
	if item.Detection != nil && len(item.Detection.MatchedTerms) > 0 {
		fmt.Fprintf(&b, "\n\nMatched: %s", strings.Join(item.Detection.MatchedTerms, ", "))
	}
	if item.Permalink != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Permalink)
	}
	return b.String()
}
