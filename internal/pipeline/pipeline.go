// Package pipeline chains plan building, prompt construction, generation,
// validation, rendering and persistence for one document-build call. The
// stages are strictly sequential; independent calls may run concurrently
// since every stage allocates fresh output from an immutable profile
// snapshot.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"rechtsdoc/internal/document"
	"rechtsdoc/internal/llm"
	"rechtsdoc/internal/profile"
	"rechtsdoc/internal/prompt"
	"rechtsdoc/internal/render"
	"rechtsdoc/internal/rules"
	"rechtsdoc/internal/storage"
)

type Pipeline struct {
	generator llm.Generator
	store     *storage.Store
	log       *zap.Logger
}

// New wires a pipeline. The store may be nil, in which case artifacts
// are returned but not persisted and no generation log is written.
func New(generator llm.Generator, store *storage.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{generator: generator, store: store, log: logger}
}

// Result carries everything one document-build call produces.
type Result struct {
	Plan       *rules.DocumentPlan
	Document   *document.GeneratedDocument
	Text       string
	HTML       string
	Page       string
	Record     *storage.DocumentRecord
	TokensUsed int
}

// Preview computes the document plan without calling the generator.
func (pl *Pipeline) Preview(docType rules.DocumentType, p *profile.SiteProfile) (*rules.DocumentPlan, error) {
	return rules.GeneratePlan(docType, p)
}

// Run executes the full plan → prompt → generate → render chain and
// persists the artifact when a store is configured.
func (pl *Pipeline) Run(ctx context.Context, docType rules.DocumentType, p *profile.SiteProfile) (*Result, error) {
	plan, err := rules.GeneratePlan(docType, p)
	if err != nil {
		return nil, err
	}

	promptText := prompt.Build(plan, p)
	pl.log.Info("generating document",
		zap.String("type", string(docType)),
		zap.String("model", pl.generator.Model()),
		zap.Int("planned_sections", len(plan.Sections)),
		zap.Int("prompt_tokens_estimate", document.EstimateTokens(promptText)),
	)

	doc, err := pl.generator.Generate(ctx, promptText)
	if err != nil {
		pl.logAttempt(ctx, p.ID, docType, 0, "error", err)
		return nil, fmt.Errorf("document generation failed: %w", err)
	}

	content, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	tokensUsed := document.EstimateTokens(promptText + string(content))

	result := &Result{
		Plan:       plan,
		Document:   doc,
		Text:       render.Text(doc),
		HTML:       render.HTML(doc),
		Page:       render.Page(doc),
		TokensUsed: tokensUsed,
	}

	if pl.store != nil {
		rec, err := pl.store.SaveDocument(ctx, &storage.DocumentRecord{
			ProfileID:   p.ID,
			Type:        string(docType),
			Title:       doc.Title,
			Content:     content,
			HTMLContent: result.HTML,
			TextContent: result.Text,
		})
		if err != nil {
			pl.logAttempt(ctx, p.ID, docType, tokensUsed, "error", err)
			return nil, err
		}
		result.Record = rec
	}

	pl.logAttempt(ctx, p.ID, docType, tokensUsed, "success", nil)
	pl.log.Info("document generated",
		zap.String("type", string(docType)),
		zap.String("title", doc.Title),
		zap.Int("sections", len(doc.Sections)),
		zap.Int("tokens_used", tokensUsed),
	)
	return result, nil
}

func (pl *Pipeline) logAttempt(ctx context.Context, profileID string, docType rules.DocumentType, tokens int, status string, cause error) {
	if pl.store == nil {
		return
	}
	entry := storage.GenerationLogEntry{
		ProfileID:    profileID,
		DocumentType: string(docType),
		Model:        pl.generator.Model(),
		TokensUsed:   tokens,
		Status:       status,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := pl.store.LogGeneration(ctx, entry); err != nil {
		pl.log.Warn("failed to write generation log", zap.Error(err))
	}
}
