package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/ai"
	"github.com/wzgate/estatechat/internal/model"
)

const classifierHistoryWindow = 4

// Classifier decides which subsystem owns the current turn. Ambiguous model
// output falls back to the previous route so turns do not oscillate; a
// transport failure is a real error and surfaces to the caller.
type Classifier struct {
	gen ai.IGenerator
}

func NewClassifier(gen ai.IGenerator) *Classifier {
	return &Classifier{gen: gen}
}

func (c *Classifier) Classify(ctx context.Context, shared []model.Message, userText string, prev model.Route) (model.Route, error) {
	if prev == model.RouteUnset {
		prev = model.RouteUnits
	}
	prompt := classifierPrompt(FormatHistory(shared, classifierHistoryWindow), userText, prev.String())
	raw, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return model.RouteUnset, fmt.Errorf("classify turn: %w", err)
	}
	route, err := model.ParseRoute(strings.TrimSpace(raw))
	if err != nil || route == model.RouteUnset {
		logutil.GetLogger(ctx).Debug("unrecognized classifier output, keeping previous route",
			zap.String("raw", raw), zap.String("prev", prev.String()))
		return prev, nil
	}
	return route, nil
}
