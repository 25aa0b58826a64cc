package source

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"spoilershield/internal/model"
)

// RSS fetches items from a configured feed URL. The URL comes from the
// credential store as FeedCredentials.
type RSS struct {
	id      string
	client  HTTPClient
	limiter Limiter
	creds   CredentialFunc
	parser  *gofeed.Parser
}

var _ Adapter = (*RSS)(nil)

// NewRSS creates the RSS adapter.
func NewRSS(client HTTPClient, limiter Limiter, creds CredentialFunc) *RSS {
	return &RSS{id: "rss", client: client, limiter: limiter, creds: creds, parser: gofeed.NewParser()}
}

// Name identifies the adapter inside the registry.
func (r *RSS) Name() string { return r.id }

// Fetch downloads and parses the configured feed. Query.Topic is ignored,
// the feed URL alone scopes what this adapter sees.
func (r *RSS) Fetch(ctx context.Context, q Query) ([]model.ContentItem, error) {
	feedURL, err := r.feedURL()
	if err != nil {
		return nil, err
	}

	if err := r.limiter.Acquire(ctx, r.id); err != nil {
		return nil, NewError(r.id, Transient, err)
	}

	body, err := fetchBody(ctx, r.client, r.id, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := r.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return []model.ContentItem{}, NewError(r.id, Malformed, fmt.Errorf("parse feed: %w", err))
	}

	limit := limitOrDefault(q.Limit)
	items := make([]model.ContentItem, 0, len(feed.Items))
	for i, entry := range feed.Items {
		if i >= limit {
			break
		}
		createdAt := time.Time{}
		if entry.PublishedParsed != nil {
			createdAt = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			createdAt = entry.UpdatedParsed.UTC()
		}
		author := ""
		if len(entry.Authors) > 0 {
			author = entry.Authors[0].Name
		}
		id := entry.GUID
		if id == "" {
			id = entry.Link
		}
		items = append(items, model.ContentItem{
			ID:        "rss_" + id,
			SourceID:  r.id,
			Title:     entry.Title,
			Body:      entry.Description,
			Author:    author,
			CreatedAt: createdAt,
			Permalink: entry.Link,
		})
	}
	return items, nil
}

func (r *RSS) feedURL() (string, error) {
	creds, ok := r.creds()
	if !ok {
		return "", NewError(r.id, Unauthenticated, fmt.Errorf("no feed URL configured"))
	}
	feed, ok := creds.(model.FeedCredentials)
	if !ok {
		return "", NewError(r.id, Unauthenticated, fmt.Errorf("expected feed credentials, got %s", creds.Kind()))
	}
	return feed.FeedURL, nil
}
