// Package prompt builds model-optimized prompts for the studio's copilot.
package prompt

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/domain"
)

// ComposeRequest carries everything the copilot knows about the target model.
type ComposeRequest struct {
	UserText   string
	CineTokens string
	ModelName  string
	Kind       domain.MediaKind
	Suggest    []string
}

// Enhancer turns a rough user description into one model-ready prompt.
type Enhancer interface {
	Compose(ctx context.Context, req ComposeRequest) (string, error)
}

// StaticEnhancer is the offline fallback: it assembles the prompt from the
// user text, cine tokens and the model's suggestion keywords without calling
// any LLM.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Compose(ctx context.Context, req ComposeRequest) (string, error) {
	caser := cases.Title(language.English)

	text := strings.TrimSpace(req.UserText)
	if text == "" {
		text = caser.String(strings.TrimSpace(req.ModelName)) + " scene"
	}
	parts := []string{text}
	if tokens := strings.TrimSpace(req.CineTokens); tokens != "" {
		parts = append(parts, tokens)
	}
	if len(req.Suggest) > 0 {
		parts = append(parts, strings.Join(req.Suggest, ", "))
	}
	if req.Kind == domain.MediaKindVideo {
		parts = append(parts, "smooth natural motion")
	}
	return strings.Join(parts, ", "), nil
}

var _ Enhancer = (*StaticEnhancer)(nil)
