package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/service"
)

type fakeTurner struct {
	reply    string
	lastSeed []model.Message
	reset    bool
	called   bool
}

func (f *fakeTurner) HandleTurn(ctx context.Context, userID string, userText string, seed []model.Message, reset bool) (*service.TurnResult, error) {
	f.called = true
	f.lastSeed = seed
	f.reset = reset
	return &service.TurnResult{
		Reply:  f.reply,
		Shared: []model.Message{model.UserMessage(userText), model.AssistantMessage(f.reply)},
	}, nil
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Chat(c)
	return rec
}

func TestChatRejectsMissingFields(t *testing.T) {
	turner := &fakeTurner{reply: "hi"}
	h := NewChatHandler(turner)

	postChat(t, h, `{"input": "hello"}`)
	require.False(t, turner.called)

	postChat(t, h, `{"user_id": "u1"}`)
	require.False(t, turner.called)
}

func TestChatOmittedHistoryIsNotAReset(t *testing.T) {
	turner := &fakeTurner{reply: "hi"}
	h := NewChatHandler(turner)
	rec := postChat(t, h, `{"user_id": "u1", "input": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, turner.called)
	require.False(t, turner.reset)
	require.Nil(t, turner.lastSeed)
}

func TestChatEmptyHistoryTriggersReset(t *testing.T) {
	turner := &fakeTurner{reply: "hi"}
	h := NewChatHandler(turner)
	postChat(t, h, `{"user_id": "u1", "input": "hello", "chat_history": []}`)
	require.True(t, turner.reset)
	require.Nil(t, turner.lastSeed)
}

func TestChatSeedHistoryIsDecoded(t *testing.T) {
	turner := &fakeTurner{reply: "hi"}
	h := NewChatHandler(turner)
	postChat(t, h, `{"user_id": "u1", "input": "hello", "chat_history": [
		{"role": "user", "content": "earlier"},
		{"role": "ai", "content": "reply"},
		{"role": "system", "content": "dropped"}
	]}`)
	require.False(t, turner.reset)
	require.Equal(t, []model.Message{
		model.UserMessage("earlier"),
		model.AssistantMessage("reply"),
	}, turner.lastSeed)
}

func TestChatReturnHistoryEchoesShared(t *testing.T) {
	turner := &fakeTurner{reply: "the reply"}
	h := NewChatHandler(turner)
	rec := postChat(t, h, `{"user_id": "u1", "input": "hello", "return_history": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data chatResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "the reply", envelope.Data.Text)
	require.Len(t, envelope.Data.ChatHistory, 2)
	require.Equal(t, "ai", envelope.Data.ChatHistory[1].Role)
}

func TestChatWithoutReturnHistoryOmitsIt(t *testing.T) {
	turner := &fakeTurner{reply: "the reply"}
	h := NewChatHandler(turner)
	rec := postChat(t, h, `{"user_id": "u1", "input": "hello"}`)
	var envelope struct {
		Data chatResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Empty(t, envelope.Data.ChatHistory)
}
