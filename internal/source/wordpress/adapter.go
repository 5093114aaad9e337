// Package wordpress adapts the WordPress REST API (wp-json/wp/v2) with the
// optional Yoast SEO head metadata.
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/fetch"
	"github.com/Redoni18/scriba-aggregator/internal/source"
)

const (
	taxonomyTag      = "post_tag"
	taxonomyCategory = "category"
	avatarSize       = "96"
	localTimeLayout  = "2006-01-02T15:04:05"
)

type Config struct {
	PerPage int
}

type Adapter struct {
	fetcher    source.Fetcher
	baseURL    string
	sourceName string
	perPage    int
	logger     *slog.Logger
}

var (
	_ source.Adapter    = (*Adapter)(nil)
	_ source.URLFetcher = (*Adapter)(nil)
)

func New(src *domain.Source, fetcher source.Fetcher, cfg Config, logger *slog.Logger) (*Adapter, error) {
	base := strings.TrimRight(src.BaseURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid base url %q", src.BaseURL)
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 10
	}

	return &Adapter{
		fetcher:    fetcher,
		baseURL:    base,
		sourceName: src.Name,
		perPage:    cfg.PerPage,
		logger:     logger.With("source", src.Name, "platform", domain.PlatformWordPress),
	}, nil
}

func (a *Adapter) FetchPage(ctx context.Context, page int) ([]domain.RemoteArticle, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/posts?_embed&per_page=%d&page=%d", a.baseURL, a.perPage, page)

	resp, err := a.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}

	// WordPress answers 400 rest_post_invalid_page_number past the last page.
	if resp.StatusCode == http.StatusBadRequest {
		a.logger.Debug("page out of range", "page", page)
		return nil, nil
	}
	if !ok(resp.StatusCode) {
		return nil, fmt.Errorf("fetch page %d: unexpected status: %d", page, resp.StatusCode)
	}

	var posts []post
	if err := json.Unmarshal(resp.Body, &posts); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}

	return a.normalizeAll(ctx, posts)
}

func (a *Adapter) FetchByURL(ctx context.Context, articleURL string) (*domain.RemoteArticle, error) {
	u, err := url.Parse(articleURL)
	if err != nil {
		return nil, fmt.Errorf("parse article url: %w", err)
	}
	slug := path.Base(strings.TrimRight(u.Path, "/"))
	if slug == "" || slug == "." || slug == "/" {
		return nil, fmt.Errorf("no slug in %q: %w", articleURL, source.ErrArticleNotFound)
	}

	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/posts?_embed&slug=%s", a.baseURL, url.QueryEscape(slug))
	resp, err := a.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch by slug %q: %w", slug, err)
	}
	if !ok(resp.StatusCode) {
		return nil, fmt.Errorf("fetch by slug %q: unexpected status: %d", slug, resp.StatusCode)
	}

	var posts []post
	if err := json.Unmarshal(resp.Body, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("slug %q: %w", slug, source.ErrArticleNotFound)
	}

	articles, err := a.normalizeAll(ctx, posts[:1])
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("slug %q: %w", slug, source.ErrArticleNotFound)
	}
	return &articles[0], nil
}

func (a *Adapter) FetchTagsByID(ctx context.Context, ids []int64) ([]string, error) {
	return a.fetchTermNames(ctx, "tags", ids)
}

func (a *Adapter) FetchCategoriesByID(ctx context.Context, ids []int64) ([]string, error) {
	return a.fetchTermNames(ctx, "categories", ids)
}

func (a *Adapter) FetchAuthorByID(ctx context.Context, id int64) (*domain.Author, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/users/%d", a.baseURL, id)

	resp, err := a.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch author %d: %w", id, err)
	}
	if !ok(resp.StatusCode) {
		return nil, fmt.Errorf("fetch author %d: unexpected status: %d", id, resp.StatusCode)
	}

	var u user
	if err := json.Unmarshal(resp.Body, &u); err != nil {
		return nil, fmt.Errorf("decode author %d: %w", id, err)
	}

	return &domain.Author{
		ID:              strconv.FormatInt(u.ID, 10),
		Name:            u.Name,
		ProfileImageURL: nonEmpty(u.AvatarURLs[avatarSize]),
	}, nil
}

func (a *Adapter) HasMore(_ int, lastBatchSize int) bool {
	return lastBatchSize > 0
}

// fetchTermNames resolves ids one by one. Ids that fail to resolve are
// skipped; only cancellation aborts the batch.
func (a *Adapter) fetchTermNames(ctx context.Context, kind string, ids []int64) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		endpoint := fmt.Sprintf("%s/wp-json/wp/v2/%s/%d", a.baseURL, kind, id)

		resp, err := a.get(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("resolve term failed", "kind", kind, "id", id, "error", err)
			continue
		}
		if !ok(resp.StatusCode) {
			a.logger.Warn("resolve term failed", "kind", kind, "id", id, "status", resp.StatusCode)
			continue
		}

		var t named
		if err := json.Unmarshal(resp.Body, &t); err != nil || t.Name == "" {
			a.logger.Warn("resolve term: bad payload", "kind", kind, "id", id)
			continue
		}
		names = append(names, t.Name)
	}
	return names, nil
}

func (a *Adapter) normalizeAll(ctx context.Context, posts []post) ([]domain.RemoteArticle, error) {
	articles := make([]domain.RemoteArticle, 0, len(posts))
	for i := range posts {
		article, err := a.normalize(ctx, &posts[i])
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("skipping post", "external_id", posts[i].ID, "error", err)
			continue
		}
		articles = append(articles, *article)
	}
	return articles, nil
}

func (a *Adapter) normalize(ctx context.Context, p *post) (*domain.RemoteArticle, error) {
	publishedAt, err := publishedTime(p)
	if err != nil {
		return nil, err
	}

	article := &domain.RemoteArticle{
		ExternalID:    strconv.FormatInt(p.ID, 10),
		CanonicalURL:  p.Link,
		Title:         p.Title.Rendered,
		Body:          p.Content.Rendered,
		PublishedAt:   publishedAt,
		CoverImageURL: coverImage(p),
		ThumbnailURL:  thumbnailImage(p),
		AuthorID:      strconv.FormatInt(p.Author, 10),
	}
	if p.Excerpt != nil {
		article.Summary = nonEmpty(p.Excerpt.Rendered)
	}

	keywords, sections := yoastTaxonomy(p)

	article.Tags = keywords
	if len(article.Tags) == 0 {
		article.Tags = embeddedTerms(p, taxonomyTag)
	}
	if len(article.Tags) == 0 && len(p.Tags) > 0 {
		if article.Tags, err = a.FetchTagsByID(ctx, p.Tags); err != nil {
			return nil, err
		}
	}

	article.Categories = sections
	if len(article.Categories) == 0 {
		article.Categories = embeddedTerms(p, taxonomyCategory)
	}
	if len(article.Categories) == 0 && len(p.Categories) > 0 {
		if article.Categories, err = a.FetchCategoriesByID(ctx, p.Categories); err != nil {
			return nil, err
		}
	}

	if err := a.resolveAuthor(ctx, p, article); err != nil {
		return nil, err
	}

	return article, nil
}

func (a *Adapter) resolveAuthor(ctx context.Context, p *post, article *domain.RemoteArticle) error {
	if p.Embedded != nil {
		for _, u := range p.Embedded.Author {
			if u.Name != "" {
				article.AuthorName = u.Name
				article.AuthorProfileImageURL = nonEmpty(u.AvatarURLs[avatarSize])
				return nil
			}
		}
	}

	if p.Yoast != nil && p.Yoast.Author != "" {
		article.AuthorName = p.Yoast.Author
		return nil
	}

	article.AuthorName = domain.UnknownAuthor
	if p.Author == 0 {
		return nil
	}

	author, err := a.FetchAuthorByID(ctx, p.Author)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("resolve author failed", "author_id", p.Author, "error", err)
		// An unresolved byline maps to the source's anonymous journalist.
		article.AuthorID = ""
		return nil
	}
	if author.Name != "" {
		article.AuthorName = author.Name
	}
	article.AuthorProfileImageURL = author.ProfileImageURL
	return nil
}

func (a *Adapter) get(ctx context.Context, endpoint string) (*fetch.Response, error) {
	return a.fetcher.Fetch(ctx, endpoint, &fetch.Options{
		Method: http.MethodGet,
		Header: http.Header{"Accept": []string{"application/json"}},
	})
}

func publishedTime(p *post) (time.Time, error) {
	if p.DateGMT != "" {
		if t, err := parseTime(p.DateGMT); err == nil {
			return t.UTC(), nil
		}
	}
	if p.Date != "" {
		if t, err := parseTime(p.Date); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("post has no usable publish date")
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(localTimeLayout, s, time.UTC)
}

func featuredMedia(p *post) *media {
	if p.Embedded == nil || len(p.Embedded.FeaturedMedia) == 0 {
		return nil
	}
	return &p.Embedded.FeaturedMedia[0]
}

func ogImage(p *post) *string {
	if p.Yoast == nil || len(p.Yoast.OGImage) == 0 {
		return nil
	}
	return nonEmpty(p.Yoast.OGImage[0].URL)
}

func coverImage(p *post) *string {
	if m := featuredMedia(p); m != nil {
		if u := nonEmpty(m.MediaDetails.Sizes["full"].SourceURL); u != nil {
			return u
		}
		if u := nonEmpty(m.SourceURL); u != nil {
			return u
		}
	}
	return ogImage(p)
}

func thumbnailImage(p *post) *string {
	if m := featuredMedia(p); m != nil {
		for _, size := range []string{"thumbnail", "medium"} {
			if u := nonEmpty(m.MediaDetails.Sizes[size].SourceURL); u != nil {
				return u
			}
		}
	}
	return ogImage(p)
}

// yoastTaxonomy reads keywords and articleSection from the Article node of
// the Yoast schema graph.
func yoastTaxonomy(p *post) (tags, categories []string) {
	if p.Yoast == nil || p.Yoast.Schema == nil {
		return nil, nil
	}
	for _, node := range p.Yoast.Schema.Graph {
		if node.Type.contains("Article") {
			return cleanNames(node.Keywords), cleanNames(node.ArticleSection)
		}
	}
	return nil, nil
}

func embeddedTerms(p *post, taxonomy string) []string {
	if p.Embedded == nil {
		return nil
	}
	var names []string
	for _, group := range p.Embedded.Terms {
		for _, t := range group {
			if t.Taxonomy == taxonomy && t.Name != "" {
				names = append(names, t.Name)
			}
		}
	}
	return names
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ok(code int) bool {
	return code >= 200 && code < 300
}
