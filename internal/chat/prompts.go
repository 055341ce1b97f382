package chat

import (
	"fmt"
	"strings"

	"github.com/wzgate/estatechat/internal/model"
)

const startOfConversation = "No previous messages. This is the start of the conversation."

// FormatHistory renders the last max messages as "Role: content" lines, or a
// start-of-conversation marker when the history is empty.
func FormatHistory(history []model.Message, max int) string {
	if len(history) == 0 {
		return startOfConversation
	}
	if max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		role := "User"
		if msg.Role == model.RoleAssistant {
			role = "Assistant"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, msg.Content))
	}
	return strings.Join(lines, "\n")
}

func classifierPrompt(history string, userInput string, lastRoute string) string {
	return fmt.Sprintf(`You are a classifier for a real estate chatbot system.
Your task is to determine whether the user's **latest query**, given the conversation history, should be handled by:
1. **UNITS Chatbot** - Focused on property-specific interactions (buying, renting, confirming property details, or refining search criteria).
2. **RAG Chatbot** - Focused on general real estate questions or requests for additional information (e.g., market trends, legal aspects, mortgage terms).

### **Classification Rules:**
- **General Questions & Information Requests:**
  If the latest query is a genuine question or explicitly asks for information or details, even when it relates to a specific property, classify it as "RAG".
- **Property-Specific and Confirmatory Messages:**
  If the user is discussing a specific property, confirming details, or refining search criteria without asking a question, classify it as "UNITS".
- **Project or Broad Real Estate Inquiries:**
  If the query mentions any real estate project or includes instructions like "tell me about projects you have", classify it as "RAG".
- **Short Confirmations:**
  If the user replies with a short confirmation such as "yes" or "no" and there is no clear change in topic, do not switch chatbots; maintain the current classification.

### **Conversation Context:**
Recent Messages:
%s

Latest User Query:
%s

Current classification:
%s

### **Classification Output:**
Return ONLY one word: "UNITS" or "RAG".
`, history, userInput, lastRoute)
}
