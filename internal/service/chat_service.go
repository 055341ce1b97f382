package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/chat"
	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/pkg/errs"
	"github.com/wzgate/estatechat/internal/pkg/userlock"
)

// FailureReply is the only user-visible fallback text; stages below this
// service report errors instead of fabricating apologies of their own.
const FailureReply = "Sorry, I couldn't process your request."

// StateStore persists per-user conversation state.
type StateStore interface {
	Get(ctx context.Context, userID string) (*model.ConversationState, error)
	Upsert(ctx context.Context, state *model.ConversationState) error
	Delete(ctx context.Context, userID string) error
}

// Classifier routes one turn to a subsystem.
type Classifier interface {
	Classify(ctx context.Context, shared []model.Message, userText string, prev model.Route) (model.Route, error)
}

// TurnResult reports the reply plus the state a handler may want to echo
// back to the client.
type TurnResult struct {
	Reply string
	// SeedUsed reports that the caller-provided history hydrated a fresh state.
	SeedUsed bool
	// NeedHistory reports that no stored state existed before this turn.
	NeedHistory bool
	Shared      []model.Message
}

// ChatService is the conversation state machine. Each turn classifies,
// dispatches to exactly one subsystem, then persists all three histories and
// the route in one write. Turns for the same user are serialized; different
// users proceed independently.
type ChatService struct {
	store      StateStore
	classifier Classifier
	subsystems map[model.Route]chat.Subsystem
	locks      *userlock.KeyedMutex
}

func NewChatService(store StateStore, classifier Classifier, subsystems ...chat.Subsystem) *ChatService {
	byRoute := make(map[model.Route]chat.Subsystem, len(subsystems))
	for _, sub := range subsystems {
		byRoute[sub.Route()] = sub
	}
	return &ChatService{
		store:      store,
		classifier: classifier,
		subsystems: byRoute,
		locks:      userlock.New(),
	}
}

// HandleTurn runs one conversation turn. A non-nil empty seed is a reset
// request: all stored histories for the user are deleted and a fresh state
// is started for this turn.
func (s *ChatService) HandleTurn(ctx context.Context, userID string, userText string, seed []model.Message, reset bool) (*TurnResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	state, seedUsed, fresh, err := s.hydrate(ctx, userID, seed, reset)
	if err != nil {
		return nil, err
	}

	route, err := s.classifier.Classify(ctx, state.Shared, userText, state.LastRoute)
	if err != nil {
		logutil.GetLogger(ctx).Error("classification failed", zap.String("user", userID), zap.Error(err))
		return &TurnResult{Reply: FailureReply, SeedUsed: seedUsed, NeedHistory: fresh, Shared: state.Shared}, nil
	}

	out, err := s.dispatch(ctx, route, state, userText)
	if err != nil {
		logutil.GetLogger(ctx).Error("turn dispatch failed",
			zap.String("user", userID), zap.String("route", route.String()), zap.Error(err))
		return &TurnResult{Reply: FailureReply, SeedUsed: seedUsed, NeedHistory: fresh, Shared: state.Shared}, nil
	}

	state.Shared = out.Shared
	state.LastRoute = route
	state.Mtime = time.Now().UnixMilli()
	switch route {
	case model.RouteRAG:
		state.RAG = out.Local
	case model.RouteUnits:
		state.Units = out.Local
	}
	if err := s.store.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("persist conversation state: %w", err)
	}
	return &TurnResult{Reply: out.Reply, SeedUsed: seedUsed, NeedHistory: fresh, Shared: state.Shared}, nil
}

// Reset deletes every stored history for the user.
func (s *ChatService) Reset(ctx context.Context, userID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()
	if err := s.store.Delete(ctx, userID); err != nil && !errs.IsNotFound(err) {
		return fmt.Errorf("delete conversation state: %w", err)
	}
	return nil
}

func (s *ChatService) hydrate(ctx context.Context, userID string, seed []model.Message, reset bool) (*model.ConversationState, bool, bool, error) {
	if reset {
		if err := s.store.Delete(ctx, userID); err != nil && !errs.IsNotFound(err) {
			return nil, false, false, fmt.Errorf("reset conversation state: %w", err)
		}
		return model.NewConversationState(userID), false, true, nil
	}
	state, err := s.store.Get(ctx, userID)
	if err == nil {
		return state, false, false, nil
	}
	if !errs.IsNotFound(err) {
		return nil, false, false, fmt.Errorf("load conversation state: %w", err)
	}
	state = model.NewConversationState(userID)
	if len(seed) > 0 {
		state.Shared = append(state.Shared, seed...)
		return state, true, true, nil
	}
	return state, false, true, nil
}

func (s *ChatService) dispatch(ctx context.Context, route model.Route, state *model.ConversationState, userText string) (chat.TurnOutput, error) {
	in := chat.TurnInput{
		Lang:     chat.DetectLang(userText),
		UserText: userText,
		Shared:   state.Shared,
	}
	switch route {
	case model.RouteRAG:
		in.Local = state.RAG
	case model.RouteUnits:
		in.Local = state.Units
	default:
		return chat.TurnOutput{}, fmt.Errorf("unroutable turn: %v", route)
	}
	sub, ok := s.subsystems[route]
	if !ok {
		return chat.TurnOutput{}, fmt.Errorf("no subsystem registered for route %s", route)
	}
	return sub.HandleTurn(ctx, in)
}
