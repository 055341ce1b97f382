package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/pkg/errcode"
	"github.com/wzgate/estatechat/internal/pkg/response"
	"github.com/wzgate/estatechat/internal/service"
)

// Turner is the slice of the chat service the handler needs.
type Turner interface {
	HandleTurn(ctx context.Context, userID string, userText string, seed []model.Message, reset bool) (*service.TurnResult, error)
}

type ChatHandler struct {
	chat Turner
}

func NewChatHandler(chat Turner) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type messagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest distinguishes an omitted chat_history from an explicitly
// empty one: the pointer stays nil when the field is absent, and an empty
// list is a request to wipe the stored histories.
type chatRequest struct {
	UserID        string            `json:"user_id"`
	Input         string            `json:"input"`
	ChatHistory   *[]messagePayload `json:"chat_history"`
	ReturnHistory bool              `json:"return_history"`
}

type chatResponse struct {
	Text        string           `json:"text"`
	NeedHistory bool             `json:"need_history"`
	ChatHistory []messagePayload `json:"chat_history,omitempty"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.UserID == "" {
		response.Error(c, errcode.ErrInvalid, "user_id is required")
		return
	}
	if req.Input == "" {
		response.Error(c, errcode.ErrInvalid, "input message is required")
		return
	}

	var seed []model.Message
	reset := false
	if req.ChatHistory != nil {
		if len(*req.ChatHistory) == 0 {
			reset = true
		} else {
			seed = decodeHistory(*req.ChatHistory)
		}
	}

	result, err := h.chat.HandleTurn(c.Request.Context(), req.UserID, req.Input, seed, reset)
	if err != nil {
		handleError(c, err)
		return
	}
	resp := chatResponse{Text: result.Reply, NeedHistory: result.NeedHistory}
	if req.ReturnHistory {
		resp.ChatHistory = encodeHistory(result.Shared)
	}
	response.Success(c, resp)
}

func decodeHistory(payload []messagePayload) []model.Message {
	messages := make([]model.Message, 0, len(payload))
	for _, m := range payload {
		switch m.Role {
		case "user":
			messages = append(messages, model.UserMessage(m.Content))
		case "ai", "assistant":
			messages = append(messages, model.AssistantMessage(m.Content))
		}
	}
	return messages
}

func encodeHistory(messages []model.Message) []messagePayload {
	payload := make([]messagePayload, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == model.RoleAssistant {
			role = "ai"
		}
		payload = append(payload, messagePayload{Role: role, Content: m.Content})
	}
	return payload
}
