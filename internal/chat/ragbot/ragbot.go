package ragbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/ai"
	"github.com/wzgate/estatechat/internal/chat"
	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/vecindex"
)

const localHistoryWindow = 10

// Searcher is the slice of the vector index the bot needs: a loaded check
// and a similarity query.
type Searcher interface {
	Loaded() bool
	Search(ctx context.Context, query string, k int) ([]vecindex.SearchResult, error)
}

// Bot answers open-ended real estate questions over the document index.
// The pipeline is refine, retrieve, answer; an absent index short-circuits
// retrieval and answers from an empty context instead of failing.
type Bot struct {
	answerGen ai.IGenerator
	refineGen ai.IGenerator
	index     Searcher
	topK      int
}

func New(answerGen, refineGen ai.IGenerator, index Searcher, topK int) *Bot {
	if topK <= 0 {
		topK = 10
	}
	return &Bot{answerGen: answerGen, refineGen: refineGen, index: index, topK: topK}
}

func (b *Bot) Route() model.Route {
	return model.RouteRAG
}

func (b *Bot) HandleTurn(ctx context.Context, in chat.TurnInput) (chat.TurnOutput, error) {
	userMsg := model.UserMessage(in.UserText)
	local := append(append([]model.Message{}, in.Local...), userMsg)
	shared := append(append([]model.Message{}, in.Shared...), userMsg)

	contextText := noContextMarker
	refined := ""
	if b.index.Loaded() {
		var err error
		refined, err = b.refineQuery(ctx, local, in.UserText)
		if err != nil {
			return chat.TurnOutput{}, err
		}
		results, err := b.index.Search(ctx, refined, b.topK)
		if err != nil {
			return chat.TurnOutput{}, fmt.Errorf("retrieve context: %w", err)
		}
		if len(results) > 0 {
			parts := make([]string, 0, len(results))
			for _, r := range results {
				parts = append(parts, r.Chunk.Text)
			}
			contextText = strings.Join(parts, "\n\n")
		}
	} else {
		logutil.GetLogger(ctx).Debug("index not loaded, answering without context")
	}

	history := chat.FormatHistory(local, localHistoryWindow)
	var prompt string
	if in.Lang == chat.LangArabic {
		prompt = answerPromptAR(in.UserText, refined, history, contextText)
	} else {
		prompt = answerPromptEN(in.UserText, refined, history, contextText)
	}
	answer, err := b.answerGen.Generate(ctx, prompt)
	if err != nil {
		return chat.TurnOutput{}, fmt.Errorf("generate answer: %w", err)
	}

	reply := model.AssistantMessage(answer)
	return chat.TurnOutput{
		Reply:  answer,
		Shared: append(shared, reply),
		Local:  append(local, reply),
	}, nil
}

// refineQuery rewrites the question into a self-contained English retrieval
// query. A refinement failure fails the turn; silently retrieving with the
// raw question would degrade results without any signal.
func (b *Bot) refineQuery(ctx context.Context, local []model.Message, question string) (string, error) {
	prompt := refinePrompt(chat.FormatHistory(local, localHistoryWindow), question)
	refined, err := b.refineGen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("refine query: %w", err)
	}
	refined = strings.TrimSpace(refined)
	logutil.GetLogger(ctx).Debug("refined retrieval query", zap.String("refined", refined))
	return refined, nil
}
