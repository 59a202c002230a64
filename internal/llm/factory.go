// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	"github.com/pdiddy/review-engine/pkg/types"
)

// New builds a Client for the configured provider. An empty provider
// defaults to gemini.
func New(ctx context.Context, cfg types.AIConfig) (Client, error) {
	switch cfg.Provider {
	case types.ProviderGemini, "":
		return NewGeminiClient(ctx, cfg)
	case types.ProviderOpenAI:
		return NewOpenAIClient(cfg)
	}
	return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
}
