package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"spoilershield/internal/model"
)

const redditBaseURL = "https://www.reddit.com"

// Reddit fetches posts from the public Reddit JSON listing API.
type Reddit struct {
	id      string
	client  HTTPClient
	limiter Limiter
	baseURL string
}

var (
	_ Adapter  = (*Reddit)(nil)
	_ Searcher = (*Reddit)(nil)
)

// NewReddit creates the Reddit adapter.
func NewReddit(client HTTPClient, limiter Limiter) *Reddit {
	return &Reddit{id: "reddit", client: client, limiter: limiter, baseURL: redditBaseURL}
}

// Name identifies the adapter inside the registry.
func (r *Reddit) Name() string { return r.id }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Author     string  `json:"author"`
				CreatedUTC float64 `json:"created_utc"`
				Permalink  string  `json:"permalink"`
				Subreddit  string  `json:"subreddit"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch returns the newest posts of the queried subreddit.
func (r *Reddit) Fetch(ctx context.Context, q Query) ([]model.ContentItem, error) {
	topic := q.Topic
	if topic == "" {
		topic = "all"
	}
	u := fmt.Sprintf("%s/r/%s/new.json?limit=%d", r.baseURL, url.PathEscape(topic), limitOrDefault(q.Limit))
	return r.listing(ctx, u)
}

// Search queries Reddit's site-wide search endpoint.
func (r *Reddit) Search(ctx context.Context, query string, opts SearchOptions) ([]model.ContentItem, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&sort=new&limit=%d",
		r.baseURL, url.QueryEscape(query), limitOrDefault(opts.Limit))
	return r.listing(ctx, u)
}

func (r *Reddit) listing(ctx context.Context, u string) ([]model.ContentItem, error) {
	if err := r.limiter.Acquire(ctx, r.id); err != nil {
		return nil, NewError(r.id, Transient, err)
	}

	body, err := fetchBody(ctx, r.client, r.id, u)
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return []model.ContentItem{}, NewError(r.id, Malformed, fmt.Errorf("decode listing: %w", err))
	}

	items := make([]model.ContentItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		items = append(items, model.ContentItem{
			ID:        "reddit_" + post.ID,
			SourceID:  r.id,
			Title:     post.Title,
			Body:      post.Selftext,
			Author:    post.Author,
			CreatedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
			Permalink: redditBaseURL + post.Permalink,
			Extra:     map[string]string{"subreddit": post.Subreddit},
		})
	}
	return items, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 25
	}
	return limit
}
