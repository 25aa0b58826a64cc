package notify

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spoilershield/internal/model"
)

type mockAPI struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m.err != nil {
		return tgbotapi.Message{}, m.err
	}
	m.sent = append(m.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func flaggedItem(id string, confidence float64) model.ContentItem {
	return model.ContentItem{
		ID:        id,
		SourceID:  "reddit",
		Title:     "Finale discussion",
		CreatedAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		Permalink: "https://example.com/" + id,
		Detection: &model.DetectionResult{
			HasSpoiler:   true,
			Confidence:   confidence,
			MatchedTerms: []string{"finale"},
		},
	}
}

func TestNotifyThreshold(t *testing.T) {
	api := &mockAPI{}
	a := &Alerter{api: api, chatID: 42, threshold: 0.90, log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	plain := model.ContentItem{ID: "plain", SourceID: "rss", Title: "No detection"}
	items := []model.ContentItem{
		flaggedItem("high", 0.95),
		flaggedItem("borderline", 0.90),
		flaggedItem("low", 0.60),
		plain,
	}

	sent := a.Notify(items)
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	for _, msg := range api.sent {
		if msg.ChatID != 42 {
			t.Errorf("chat id = %d, want 42", msg.ChatID)
		}
	}
}

func TestFormatAlert(t *testing.T) {
	got := FormatAlert(flaggedItem("x", 0.95))

	for _, want := range []string{"[reddit]", "95%", "Finale discussion", "Matched: finale", "https://example.com/x"} {
		if !strings.Contains(got, want) {
			t.Errorf("alert missing %q:\n%s", want, got)
		}
	}
}

func TestFormatAlertWithoutDetection(t *testing.T) {
	got := FormatAlert(model.ContentItem{
		SourceID:  "rss",
		Title:     "Unscored item",
		Permalink: "https://example.com/raw",
	})

	for _, want := range []string{"[rss]", "Unscored item", "https://example.com/raw"} {
		if !strings.Contains(got, want) {
			t.Errorf("alert missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "%") || strings.Contains(got, "Matched:") {
		t.Errorf("alert for unscored item carries detection details:\n%s", got)
	}
}
