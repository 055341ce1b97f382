package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wzgate/estatechat/internal/chat"
	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/pkg/errs"
)

type memStateStore struct {
	states map[string]*model.ConversationState
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: map[string]*model.ConversationState{}}
}

func (m *memStateStore) Get(ctx context.Context, userID string) (*model.ConversationState, error) {
	st, ok := m.states[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memStateStore) Upsert(ctx context.Context, state *model.ConversationState) error {
	cp := *state
	m.states[state.UserID] = &cp
	return nil
}

func (m *memStateStore) Delete(ctx context.Context, userID string) error {
	delete(m.states, userID)
	return nil
}

type fixedClassifier struct {
	route model.Route
	err   error
}

func (f *fixedClassifier) Classify(ctx context.Context, shared []model.Message, userText string, prev model.Route) (model.Route, error) {
	if f.err != nil {
		return model.RouteUnset, f.err
	}
	if f.route == model.RouteUnset {
		if prev == model.RouteUnset {
			return model.RouteUnits, nil
		}
		return prev, nil
	}
	return f.route, nil
}

// echoSubsystem appends the turn to both histories and replies with a fixed
// text, mimicking the contract real subsystems follow.
type echoSubsystem struct {
	route model.Route
	reply string
	err   error
	langs []chat.Lang
}

func (e *echoSubsystem) Route() model.Route { return e.route }

func (e *echoSubsystem) HandleTurn(ctx context.Context, in chat.TurnInput) (chat.TurnOutput, error) {
	if e.err != nil {
		return chat.TurnOutput{}, e.err
	}
	e.langs = append(e.langs, in.Lang)
	userMsg := model.UserMessage(in.UserText)
	replyMsg := model.AssistantMessage(e.reply)
	return chat.TurnOutput{
		Reply:  e.reply,
		Shared: append(append(append([]model.Message{}, in.Shared...), userMsg), replyMsg),
		Local:  append(append(append([]model.Message{}, in.Local...), userMsg), replyMsg),
	}, nil
}

func TestHandleTurnTwoTurnRoutingScenario(t *testing.T) {
	store := newMemStateStore()
	units := &echoSubsystem{route: model.RouteUnits, reply: "which area?"}
	rag := &echoSubsystem{route: model.RouteRAG, reply: "trends are up"}
	classifier := &fixedClassifier{}
	svc := NewChatService(store, classifier, units, rag)

	// First turn has no prior route; Arabic input routes to UNITS by default.
	res, err := svc.HandleTurn(context.Background(), "u1", "أبحث عن شقة في القاهرة", nil, false)
	require.NoError(t, err)
	require.Equal(t, "which area?", res.Reply)
	require.Equal(t, []chat.Lang{chat.LangArabic}, units.langs)
	require.Equal(t, model.RouteUnits, store.states["u1"].LastRoute)

	classifier.route = model.RouteRAG
	res, err = svc.HandleTurn(context.Background(), "u1", "what are the current market trends in New Cairo?", nil, false)
	require.NoError(t, err)
	require.Equal(t, "trends are up", res.Reply)
	require.Equal(t, []chat.Lang{chat.LangEnglish}, rag.langs)

	st := store.states["u1"]
	require.Len(t, st.Shared, 4)
	require.Len(t, st.Units, 2)
	require.Len(t, st.RAG, 2)
	require.Equal(t, model.RouteRAG, st.LastRoute)
}

func TestHandleTurnSharedHistoryMonotonic(t *testing.T) {
	store := newMemStateStore()
	svc := NewChatService(store, &fixedClassifier{route: model.RouteUnits},
		&echoSubsystem{route: model.RouteUnits, reply: "ok"})

	prev := 0
	for i := 0; i < 5; i++ {
		_, err := svc.HandleTurn(context.Background(), "u1", fmt.Sprintf("turn %d", i), nil, false)
		require.NoError(t, err)
		cur := len(store.states["u1"].Shared)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	require.Equal(t, 10, prev)
}

func TestHandleTurnSeedHydratesNewUser(t *testing.T) {
	store := newMemStateStore()
	svc := NewChatService(store, &fixedClassifier{route: model.RouteUnits},
		&echoSubsystem{route: model.RouteUnits, reply: "ok"})

	seed := []model.Message{model.UserMessage("earlier"), model.AssistantMessage("reply")}
	res, err := svc.HandleTurn(context.Background(), "u1", "continue", seed, false)
	require.NoError(t, err)
	require.True(t, res.SeedUsed)
	require.True(t, res.NeedHistory)
	require.Len(t, store.states["u1"].Shared, 4)

	// Seed is ignored once the user has stored state.
	res, err = svc.HandleTurn(context.Background(), "u1", "again", seed, false)
	require.NoError(t, err)
	require.False(t, res.SeedUsed)
	require.False(t, res.NeedHistory)
}

func TestHandleTurnResetDropsAllHistories(t *testing.T) {
	store := newMemStateStore()
	svc := NewChatService(store, &fixedClassifier{route: model.RouteUnits},
		&echoSubsystem{route: model.RouteUnits, reply: "ok"})

	_, err := svc.HandleTurn(context.Background(), "u1", "first", nil, false)
	require.NoError(t, err)
	require.Len(t, store.states["u1"].Shared, 2)

	res, err := svc.HandleTurn(context.Background(), "u1", "fresh start", nil, true)
	require.NoError(t, err)
	require.Equal(t, "ok", res.Reply)
	st := store.states["u1"]
	require.Len(t, st.Shared, 2)
	require.Equal(t, "fresh start", st.Shared[0].Content)
	require.Empty(t, st.RAG)
}

func TestHandleTurnClassifierFailureReturnsFailureReply(t *testing.T) {
	store := newMemStateStore()
	svc := NewChatService(store, &fixedClassifier{err: fmt.Errorf("model down")},
		&echoSubsystem{route: model.RouteUnits, reply: "ok"})

	res, err := svc.HandleTurn(context.Background(), "u1", "hello", nil, false)
	require.NoError(t, err)
	require.Equal(t, FailureReply, res.Reply)
	require.NotContains(t, store.states, "u1")
}

func TestHandleTurnSubsystemFailureReturnsFailureReply(t *testing.T) {
	store := newMemStateStore()
	svc := NewChatService(store, &fixedClassifier{route: model.RouteRAG},
		&echoSubsystem{route: model.RouteRAG, err: fmt.Errorf("refine query: timeout")})

	res, err := svc.HandleTurn(context.Background(), "u1", "question", nil, false)
	require.NoError(t, err)
	require.Equal(t, FailureReply, res.Reply)
	require.NotContains(t, store.states, "u1")
}

func TestResetRemovesState(t *testing.T) {
	store := newMemStateStore()
	svc := NewChatService(store, &fixedClassifier{route: model.RouteUnits},
		&echoSubsystem{route: model.RouteUnits, reply: "ok"})

	_, err := svc.HandleTurn(context.Background(), "u1", "hello", nil, false)
	require.NoError(t, err)
	require.NoError(t, svc.Reset(context.Background(), "u1"))
	require.NotContains(t, store.states, "u1")
}
