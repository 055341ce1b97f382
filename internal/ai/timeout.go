package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// WithCallTimeout bounds every Generate call. A turn that never hears back
// from the model would otherwise pin the caller's per-user lock forever.
func WithCallTimeout(gen IGenerator, timeout time.Duration) IGenerator {
	if gen == nil || timeout <= 0 {
		return gen
	}
	return &timeoutGenerator{next: gen, timeout: timeout}
}

type timeoutGenerator struct {
	next    IGenerator
	timeout time.Duration
}

func (g *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

// WithEmbedTimeout bounds every Embed call the same way.
func WithEmbedTimeout(e IEmbedder, timeout time.Duration) IEmbedder {
	if e == nil || timeout <= 0 {
		return e
	}
	return &timeoutEmbedder{next: e, timeout: timeout}
}

type timeoutEmbedder struct {
	next    IEmbedder
	timeout time.Duration
}

func (e *timeoutEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.next.Embed(ctx, text, taskType)
}

func (e *timeoutEmbedder) ModelName() string {
	return e.next.ModelName()
}
