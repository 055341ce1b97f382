package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wzgate/estatechat/internal/model"
)

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestClassifyParsesValidTokens(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Route
	}{
		{"UNITS", model.RouteUnits},
		{"RAG", model.RouteRAG},
		{"  RAG\n", model.RouteRAG},
	}
	for _, tt := range tests {
		c := NewClassifier(genFunc(func(ctx context.Context, prompt string) (string, error) {
			return tt.raw, nil
		}))
		route, err := c.Classify(context.Background(), nil, "hello", model.RouteUnits)
		require.NoError(t, err)
		require.Equal(t, tt.want, route)
	}
}

func TestClassifyStickyFallbackOnGarbage(t *testing.T) {
	for _, raw := range []string{"MAYBE", "rag chatbot", "UNITS or RAG"} {
		c := NewClassifier(genFunc(func(ctx context.Context, prompt string) (string, error) {
			return raw, nil
		}))
		route, err := c.Classify(context.Background(), nil, "hmm", model.RouteRAG)
		require.NoError(t, err)
		require.Equal(t, model.RouteRAG, route, "raw=%q", raw)
	}
}

func TestClassifyEmptyOutputKeepsPreviousRoute(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		c := NewClassifier(genFunc(func(ctx context.Context, prompt string) (string, error) {
			return raw, nil
		}))
		route, err := c.Classify(context.Background(), nil, "hmm", model.RouteRAG)
		require.NoError(t, err)
		require.Equal(t, model.RouteRAG, route, "raw=%q", raw)
	}
}

func TestClassifyDefaultsToUnitsWhenNoPriorRoute(t *testing.T) {
	c := NewClassifier(genFunc(func(ctx context.Context, prompt string) (string, error) {
		return "garbage", nil
	}))
	route, err := c.Classify(context.Background(), nil, "first turn", model.RouteUnset)
	require.NoError(t, err)
	require.Equal(t, model.RouteUnits, route)
}

func TestClassifySurfacesTransportError(t *testing.T) {
	c := NewClassifier(genFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", fmt.Errorf("connection refused")
	}))
	_, err := c.Classify(context.Background(), nil, "hello", model.RouteUnits)
	require.Error(t, err)
}

func TestClassifyPromptWindowsHistory(t *testing.T) {
	var seen string
	c := NewClassifier(genFunc(func(ctx context.Context, prompt string) (string, error) {
		seen = prompt
		return "UNITS", nil
	}))
	history := []model.Message{
		model.UserMessage("one"),
		model.AssistantMessage("two"),
		model.UserMessage("three"),
		model.AssistantMessage("four"),
		model.UserMessage("five"),
	}
	_, err := c.Classify(context.Background(), history, "latest", model.RouteRAG)
	require.NoError(t, err)
	require.NotContains(t, seen, "User: one")
	require.Contains(t, seen, "Assistant: two")
	require.Contains(t, seen, "User: five")
	require.Contains(t, seen, "latest")
	require.Contains(t, seen, "RAG")
}

func TestFormatHistoryEmptyUsesMarker(t *testing.T) {
	out := FormatHistory(nil, 4)
	require.True(t, strings.Contains(out, "start of the conversation"))
}
