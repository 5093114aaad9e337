// Package ecb adapts the Pulselive content API used by the ECB cricket sites.
package ecb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/fetch"
	"github.com/Redoni18/scriba-aggregator/internal/source"
)

// Config holds ECB adapter configuration.
type Config struct {
	PageSize int
}

// Source implements source.Adapter for the ECB content API. The remote API
// pages from zero; callers page from one.
type Source struct {
	fetcher  source.Fetcher
	endpoint *url.URL
	pageSize int
	logger   *slog.Logger

	numPages int
}

var _ source.Adapter = (*Source)(nil)

// New creates a new ECB adapter for src. BaseURL is the listing endpoint.
func New(src *domain.Source, fetcher source.Fetcher, cfg Config, logger *slog.Logger) (*Source, error) {
	endpoint, err := url.Parse(src.BaseURL)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", src.BaseURL)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}

	return &Source{
		fetcher:  fetcher,
		endpoint: endpoint,
		pageSize: cfg.PageSize,
		logger:   logger.With("source", src.Name, "platform", domain.PlatformECB),
	}, nil
}

// FetchPage fetches one listing page.
func (s *Source) FetchPage(ctx context.Context, page int) ([]domain.RemoteArticle, error) {
	resp, err := s.fetchPage(ctx, page-1)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}

	s.numPages = resp.PageInfo.NumPages

	s.logger.Debug("fetched page",
		"page", page,
		"articles", len(resp.Content),
		"num_pages", resp.PageInfo.NumPages,
	)

	return s.transform(resp.Content), nil
}

// HasMore stops at the last page the API reported.
func (s *Source) HasMore(page, lastBatchSize int) bool {
	if lastBatchSize == 0 {
		return false
	}
	return s.numPages == 0 || page < s.numPages
}

// The listing embeds tags and authors; the API has no per-id lookups.

func (s *Source) FetchTagsByID(context.Context, []int64) ([]string, error) {
	return nil, source.ErrNotSupported
}

func (s *Source) FetchCategoriesByID(context.Context, []int64) ([]string, error) {
	return nil, source.ErrNotSupported
}

func (s *Source) FetchAuthorByID(context.Context, int64) (*domain.Author, error) {
	return nil, source.ErrNotSupported
}

func (s *Source) fetchPage(ctx context.Context, page int) (*APIResponse, error) {
	u := *s.endpoint
	q := u.Query()
	q.Set("pageSize", strconv.Itoa(s.pageSize))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	resp, err := s.fetcher.Fetch(ctx, u.String(), &fetch.Options{
		Method: http.MethodGet,
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(resp.Body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &apiResp, nil
}

func (s *Source) transform(contents []Content) []domain.RemoteArticle {
	articles := make([]domain.RemoteArticle, 0, len(contents))

	for _, c := range contents {
		publishedAt, err := time.Parse(time.RFC3339, c.Date)
		if err != nil {
			s.logger.Warn("failed to parse date",
				"external_id", c.ID,
				"date", c.Date,
			)
			continue
		}

		article := domain.RemoteArticle{
			ExternalID:   strconv.FormatInt(c.ID, 10),
			CanonicalURL: c.CanonicalURL,
			Title:        c.Title,
			Summary:      firstNonEmpty(c.Summary, c.Description),
			PublishedAt:  publishedAt.UTC(),
			AuthorName:   domain.UnknownAuthor,
		}
		if c.Body != nil {
			article.Body = *c.Body
		}

		// The API has no author ids, so the byline is the identity.
		if c.Author != nil && strings.TrimSpace(*c.Author) != "" {
			article.AuthorName = strings.TrimSpace(*c.Author)
			article.AuthorID = article.AuthorName
		}

		if c.LeadMedia != nil {
			article.CoverImageURL = nonEmpty(c.LeadMedia.ImageURL)
			article.ThumbnailURL = nonEmpty(c.LeadMedia.ThumbnailURL)
			if article.ThumbnailURL == nil {
				article.ThumbnailURL = article.CoverImageURL
			}
		}

		for _, tag := range c.Tags {
			if tag.Label != "" {
				article.Tags = append(article.Tags, tag.Label)
			}
		}

		articles = append(articles, article)
	}

	return articles
}

func firstNonEmpty(values ...*string) *string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return v
		}
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
