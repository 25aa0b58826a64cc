package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"spoilershield/internal/model"
)

const youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTube fetches recent videos via the YouTube Data API. It requires a
// KeyCredentials entry in the credential store.
type YouTube struct {
	id      string
	client  HTTPClient
	limiter Limiter
	creds   CredentialFunc
	baseURL string
}

var (
	_ Adapter  = (*YouTube)(nil)
	_ Searcher = (*YouTube)(nil)
)

// NewYouTube creates the YouTube adapter.
func NewYouTube(client HTTPClient, limiter Limiter, creds CredentialFunc) *YouTube {
	return &YouTube{id: "youtube", client: client, limiter: limiter, creds: creds, baseURL: youtubeBaseURL}
}

// Name identifies the adapter inside the registry.
func (y *YouTube) Name() string { return y.id }

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string    `json:"title"`
			Description  string    `json:"description"`
			ChannelTitle string    `json:"channelTitle"`
			PublishedAt  time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// Fetch returns recent videos for the queried topic.
func (y *YouTube) Fetch(ctx context.Context, q Query) ([]model.ContentItem, error) {
	return y.Search(ctx, q.Topic, SearchOptions{Limit: q.Limit})
}

// Search queries the Data API search endpoint.
func (y *YouTube) Search(ctx context.Context, query string, opts SearchOptions) ([]model.ContentItem, error) {
	key, err := y.apiKey()
	if err != nil {
		return nil, err
	}

	if err := y.limiter.Acquire(ctx, y.id); err != nil {
		return nil, NewError(y.id, Transient, err)
	}

	u := fmt.Sprintf("%s/search?part=snippet&type=video&order=date&q=%s&maxResults=%d&key=%s",
		y.baseURL, url.QueryEscape(query), limitOrDefault(opts.Limit), url.QueryEscape(key))

	body, err := fetchBody(ctx, y.client, y.id, u)
	if err != nil {
		return nil, err
	}

	var resp youtubeSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return []model.ContentItem{}, NewError(y.id, Malformed, fmt.Errorf("decode search response: %w", err))
	}

	items := make([]model.ContentItem, 0, len(resp.Items))
	for _, v := range resp.Items {
		items = append(items, model.ContentItem{
			ID:        "youtube_" + v.ID.VideoID,
			SourceID:  y.id,
			Title:     v.Snippet.Title,
			Body:      v.Snippet.Description,
			Author:    v.Snippet.ChannelTitle,
			CreatedAt: v.Snippet.PublishedAt.UTC(),
			Permalink: "https://www.youtube.com/watch?v=" + v.ID.VideoID,
		})
	}
	return items, nil
}

func (y *YouTube) apiKey() (string, error) {
	creds, ok := y.creds()
	if !ok {
		return "", NewError(y.id, Unauthenticated, fmt.Errorf("no credentials configured"))
	}
	key, ok := creds.(model.KeyCredentials)
	if !ok {
		return "", NewError(y.id, Unauthenticated, fmt.Errorf("expected key credentials, got %s", creds.Kind()))
	}
	return key.APIKey, nil
}
