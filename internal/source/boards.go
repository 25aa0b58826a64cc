package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"spoilershield/internal/model"
)

// Boards scrapes thread listings from a forum index page. The board URL
// comes from the credential store as FeedCredentials.
type Boards struct {
	id      string
	client  HTTPClient
	limiter Limiter
	creds   CredentialFunc
}

var _ Adapter = (*Boards)(nil)

// NewBoards creates the forum scraping adapter.
func NewBoards(client HTTPClient, limiter Limiter, creds CredentialFunc) *Boards {
	return &Boards{id: "boards", client: client, limiter: limiter, creds: creds}
}

// Name identifies the adapter inside the registry.
func (b *Boards) Name() string { return b.id }

// Fetch downloads the board index and extracts its threads.
func (b *Boards) Fetch(ctx context.Context, q Query) ([]model.ContentItem, error) {
	boardURL, err := b.boardURL()
	if err != nil {
		return nil, err
	}
	if q.Topic != "" {
		boardURL = strings.TrimRight(boardURL, "/") + "/" + q.Topic
	}

	if err := b.limiter.Acquire(ctx, b.id); err != nil {
		return nil, NewError(b.id, Transient, err)
	}

	body, err := fetchBody(ctx, b.client, b.id, boardURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return []model.ContentItem{}, NewError(b.id, Malformed, fmt.Errorf("parse board page: %w", err))
	}

	limit := limitOrDefault(q.Limit)
	items := make([]model.ContentItem, 0, limit)
	doc.Find(".thread").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		titleSel := s.Find(".thread-title a").First()
		title := strings.TrimSpace(titleSel.Text())
		if title == "" {
			return true
		}
		link, _ := titleSel.Attr("href")
		author := strings.TrimSpace(s.Find(".thread-author").First().Text())
		excerpt := strings.TrimSpace(s.Find(".thread-excerpt").First().Text())
		createdAt := parseThreadTime(s)
		id, ok := s.Attr("data-thread-id")
		if !ok {
			id = link
		}
		items = append(items, model.ContentItem{
			ID:        "boards_" + id,
			SourceID:  b.id,
			Title:     title,
			Body:      excerpt,
			Author:    author,
			CreatedAt: createdAt,
			Permalink: link,
		})
		return true
	})
	return items, nil
}

// parseThreadTime reads the machine-readable timestamp of a thread row.
// Boards that omit it get a zero time and sort last in the merged feed.
func parseThreadTime(s *goquery.Selection) time.Time {
	raw, ok := s.Find("time").First().Attr("datetime")
	if !ok {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (b *Boards) boardURL() (string, error) {
	creds, ok := b.creds()
	if !ok {
		return "", NewError(b.id, Unauthenticated, fmt.Errorf("no board URL configured"))
	}
	feed, ok := creds.(model.FeedCredentials)
	if !ok {
		return "", NewError(b.id, Unauthenticated, fmt.Errorf("expected feed credentials, got %s", creds.Kind()))
	}
	return feed.FeedURL, nil
}
