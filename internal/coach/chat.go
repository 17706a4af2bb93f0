package coach

import (
	"context"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/openai/openai-go/v3"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a coaching conversation.
type Message struct {
	Role    Role
	Content string
}

// maxHistory is the number of earlier turns sent along with a question.
const maxHistory = 20

type Chat struct {
	client *Client
}

func NewChat(client *Client) *Chat {
	return &Chat{client: client}
}

// Online reports whether replies can be generated.
func (c *Chat) Online() bool {
	return c.client != nil
}

// Reply answers question in the context of the earlier conversation. The reply is Markdown.
func (c *Chat) Reply(ctx context.Context, profile *assessment.Profile, history []Message, question string) (string, error) {
	if c.client == nil {
		return "", ErrCoachOffline
	}
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, m := range history {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(question))
	return c.client.complete(ctx, completion{
		system:   chatSystemPrompt(profile),
		messages: messages,
		format:   nil,
	})
}
