package llm

import (
	"context"
	"fmt"

	"github.com/Entropy136/intention-test-extension/internal/common/cnst"
	"github.com/Entropy136/intention-test-extension/internal/common/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// Completer is the model interface the generation loop depends on. The
// production implementation is Client; tests substitute a fake.
type Completer interface {
	ChatCompletion(ctx context.Context, messages []ChatMessage) (string, error)
}

// Client wraps the OpenAI client with our configuration
type Client struct {
	client openai.Client
	model  string
}

var _ Completer = (*Client)(nil)

// NewClient creates a new OpenAI client with the given configuration
func NewClient(cfg *config.OpenAIConfig) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// ChatCompletion sends the conversation to the model and returns the text
// of the first choice.
func (c *Client) ChatCompletion(ctx context.Context, messages []ChatMessage) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case cnst.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case cnst.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
