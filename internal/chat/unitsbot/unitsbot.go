package unitsbot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/ai"
	"github.com/wzgate/estatechat/internal/chat"
	"github.com/wzgate/estatechat/internal/model"
)

// Bot collects property search criteria turn by turn. Until the user
// confirms they are done it keeps asking follow-up questions; once done it
// extracts the structured criteria and replies with a requirements summary.
type Bot struct {
	chatGen    ai.IGenerator
	extractGen ai.IGenerator
}

func New(chatGen, extractGen ai.IGenerator) *Bot {
	return &Bot{chatGen: chatGen, extractGen: extractGen}
}

func (b *Bot) Route() model.Route {
	return model.RouteUnits
}

func (b *Bot) HandleTurn(ctx context.Context, in chat.TurnInput) (chat.TurnOutput, error) {
	userMsg := model.UserMessage(in.UserText)
	local := append(append([]model.Message{}, in.Local...), userMsg)
	shared := append(append([]model.Message{}, in.Shared...), userMsg)
	history := chat.FormatHistory(local, 0)

	done, err := b.checkComplete(ctx, history)
	if err != nil {
		return chat.TurnOutput{}, err
	}

	var reply string
	if done {
		reply, err = b.summarize(ctx, in.Lang, history)
	} else {
		reply, err = b.followUp(ctx, in.Lang, history, in.UserText)
	}
	if err != nil {
		return chat.TurnOutput{}, err
	}

	replyMsg := model.AssistantMessage(reply)
	return chat.TurnOutput{
		Reply:  reply,
		Shared: append(shared, replyMsg),
		Local:  append(local, replyMsg),
	}, nil
}

// checkComplete asks whether the user is ready to run the search. Anything
// other than a literal YES counts as not ready.
func (b *Bot) checkComplete(ctx context.Context, history string) (bool, error) {
	raw, err := b.extractGen.Generate(ctx, completionCheckPrompt(history))
	if err != nil {
		return false, fmt.Errorf("completion check: %w", err)
	}
	verdict := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), "'\"."))
	return verdict == "YES", nil
}

func (b *Bot) followUp(ctx context.Context, lang chat.Lang, history, userText string) (string, error) {
	prompt := followUpPrompt(lang, history) + "\n\nLatest user message: " + userText
	reply, err := b.chatGen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("follow-up question: %w", err)
	}
	return reply, nil
}

// summarize extracts the structured criteria and turns them into a
// requirements summary. When extraction yields nothing usable the bot asks
// the user to start over with the baseline questions instead.
func (b *Bot) summarize(ctx context.Context, lang chat.Lang, history string) (string, error) {
	info, err := b.Extract(ctx, history)
	if err != nil || info.Empty() {
		if err != nil {
			logutil.GetLogger(ctx).Warn("criteria extraction failed", zap.Error(err))
		}
		return fallbackMessage(lang), nil
	}
	reply, err := b.chatGen.Generate(ctx, summaryPrompt(lang, history))
	if err != nil {
		return "", fmt.Errorf("summarize requirements: %w", err)
	}
	return reply, nil
}

// Extract runs the structured extraction over the conversation and parses
// the model's JSON reply.
func (b *Bot) Extract(ctx context.Context, conversation string) (*ExtractedInfo, error) {
	raw, err := b.extractGen.Generate(ctx, extractionPrompt(conversation))
	if err != nil {
		return nil, fmt.Errorf("extract criteria: %w", err)
	}
	var info ExtractedInfo
	if err := json.Unmarshal([]byte(stripJSONFence(raw)), &info); err != nil {
		return nil, fmt.Errorf("decode extracted criteria: %w", err)
	}
	return &info, nil
}

// stripJSONFence removes a surrounding markdown code fence, with or without
// a json language tag.
func stripJSONFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
