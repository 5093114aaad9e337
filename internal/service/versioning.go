package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

type Decision int

const (
	DecisionCreate Decision = iota
	DecisionNoOp
	DecisionUpdateMetadata
	DecisionUpdateContent
)

func (d Decision) String() string {
	switch d {
	case DecisionCreate:
		return "create"
	case DecisionNoOp:
		return "noop"
	case DecisionUpdateMetadata:
		return "update_metadata"
	case DecisionUpdateContent:
		return "update_content"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Decide picks what to do with a remote article given the stored one (nil when
// unseen) and the fingerprint of the remote body.
func Decide(existing *domain.Article, remote *domain.RemoteArticle, bodyHash string) Decision {
	switch {
	case existing == nil:
		return DecisionCreate
	case existing.BodyHash != bodyHash:
		return DecisionUpdateContent
	case metadataDiffers(existing, remote):
		return DecisionUpdateMetadata
	default:
		return DecisionNoOp
	}
}

func metadataDiffers(existing *domain.Article, remote *domain.RemoteArticle) bool {
	return existing.Title != remote.Title ||
		!equalPtr(existing.Summary, remote.Summary) ||
		!equalPtr(existing.ThumbnailURL, remote.ThumbnailURL) ||
		!equalPtr(existing.CoverImageURL, remote.CoverImageURL)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// VersionEngine applies a Decision. An article write and the version row it
// implies are committed in one transaction.
type VersionEngine struct {
	articles  ArticleStore
	versions  VersionStore
	txManager TransactionManager
	now       func() time.Time
}

func NewVersionEngine(articles ArticleStore, versions VersionStore, txManager TransactionManager) *VersionEngine {
	return &VersionEngine{
		articles:  articles,
		versions:  versions,
		txManager: txManager,
		now:       time.Now,
	}
}

func (e *VersionEngine) Apply(
	ctx context.Context,
	sourceID uuid.UUID,
	existing *domain.Article,
	remote *domain.RemoteArticle,
	bodyHash string,
	journalistID *uuid.UUID,
) (*domain.IngestResult, error) {
	now := e.now().UTC()

	decision := Decide(existing, remote, bodyHash)
	if decision == DecisionNoOp && relinksJournalist(existing, journalistID) {
		decision = DecisionUpdateMetadata
	}

	switch decision {
	case DecisionNoOp:
		return &domain.IngestResult{Article: existing, Outcome: domain.OutcomeUnchanged}, nil

	case DecisionUpdateMetadata:
		article := *existing
		applyMetadata(&article, remote, journalistID, now)
		if err := e.articles.Update(ctx, &article); err != nil {
			return nil, fmt.Errorf("update article metadata: %w", err)
		}
		return &domain.IngestResult{Article: &article, Outcome: domain.OutcomeMetadataUpdated}, nil

	case DecisionUpdateContent:
		article := *existing
		applyMetadata(&article, remote, journalistID, now)
		article.BodyHash = bodyHash

		err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := e.articles.Update(txCtx, &article); err != nil {
				return fmt.Errorf("update article: %w", err)
			}
			return e.createVersion(txCtx, &article, remote, now)
		})
		if err != nil {
			return nil, err
		}
		return &domain.IngestResult{Article: &article, Outcome: domain.OutcomeUpdated}, nil
	}

	article := &domain.Article{
		ID:            uuid.New(),
		SourceID:      sourceID,
		ExternalID:    remote.ExternalID,
		CanonicalURL:  remote.CanonicalURL,
		Title:         remote.Title,
		Summary:       remote.Summary,
		ThumbnailURL:  remote.ThumbnailURL,
		CoverImageURL: remote.CoverImageURL,
		BodyHash:      bodyHash,
		PublishedAt:   remote.PublishedAt,
		JournalistID:  journalistID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.articles.Create(txCtx, article); err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		return e.createVersion(txCtx, article, remote, now)
	})
	if err != nil {
		return nil, err
	}
	return &domain.IngestResult{Article: article, Outcome: domain.OutcomeCreated}, nil
}

func (e *VersionEngine) createVersion(ctx context.Context, article *domain.Article, remote *domain.RemoteArticle, now time.Time) error {
	version := &domain.ArticleVersion{
		ID:        uuid.New(),
		ArticleID: article.ID,
		Title:     remote.Title,
		Summary:   remote.Summary,
		Body:      remote.Body,
		CreatedAt: now,
	}
	if err := e.versions.Create(ctx, version); err != nil {
		return fmt.Errorf("create article version: %w", err)
	}
	return nil
}

// relinksJournalist reports whether a resolved byline now points at a
// different journalist than the stored article.
func relinksJournalist(existing *domain.Article, journalistID *uuid.UUID) bool {
	if journalistID == nil {
		return false
	}
	return existing.JournalistID == nil || *existing.JournalistID != *journalistID
}

func applyMetadata(article *domain.Article, remote *domain.RemoteArticle, journalistID *uuid.UUID, now time.Time) {
	article.Title = remote.Title
	article.Summary = remote.Summary
	article.ThumbnailURL = remote.ThumbnailURL
	article.CoverImageURL = remote.CoverImageURL
	if journalistID != nil {
		article.JournalistID = journalistID
	}
	article.UpdatedAt = now
}
