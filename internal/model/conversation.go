package model

// ConversationState is the per-user aggregate the conversation router owns.
// Shared is visible to both sub-systems and the classifier; RAG and Units are
// sub-system local histories. Sub-systems never mutate the state directly:
// they return updated history slices from their turn and the router persists
// them.
type ConversationState struct {
	UserID    string
	Shared    []Message
	RAG       []Message
	Units     []Message
	LastRoute Route
	Mtime     int64
}

func NewConversationState(userID string) *ConversationState {
	return &ConversationState{UserID: userID}
}
