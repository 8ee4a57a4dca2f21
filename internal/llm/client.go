// Package llm holds the generation clients. The pipeline only depends on
// the Generator interface; concrete clients are injected at startup so
// tests can substitute a fake.
package llm

import (
	"context"
	"errors"

	"rechtsdoc/internal/document"
)

// Error taxonomy for the generation boundary. The pipeline propagates
// these unchanged; retry and backoff policy is the caller's concern.
var (
	// ErrUnavailable means the service cannot be used at all, typically
	// missing credentials or configuration.
	ErrUnavailable = errors.New("generation service unavailable")
	// ErrTransport covers network and service failures.
	ErrTransport = errors.New("generation transport error")
	// ErrMalformedOutput means the reply failed structural validation.
	// Such a reply is rejected wholesale, never partially accepted.
	ErrMalformedOutput = errors.New("malformed generation output")
)

const systemPrompt = "Du bist ein Experte für deutsche und europäische Datenschutz- und Impressumspflichten. Du gibst immer gültiges JSON zurück."

// Generator produces a structurally validated document from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*document.GeneratedDocument, error)
	Model() string
}

func parseReply(raw string) (*document.GeneratedDocument, error) {
	doc, err := document.Parse(raw)
	if err != nil {
		return nil, errors.Join(ErrMalformedOutput, err)
	}
	return doc, nil
}
