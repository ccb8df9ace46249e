package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Supported providers. Cohere is reached through its OpenAI-compatible API.
const (
	ProviderCohere = "cohere"
	ProviderOpenAI = "openai"

	CohereBaseURL      = "https://api.cohere.ai/compatibility/v1"
	DefaultCohereModel = "command-r-plus"
	DefaultOpenAIModel = openai.ChatModelGPT4oMini
)

const defaultChatTemperature = 0.3

// OpenAIClient calls an OpenAI-compatible Chat Completions API.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

// NewOpenAIClient builds a client. An empty baseURL keeps the SDK default
// (api.openai.com). The key is not checked here; a bad key surfaces as the
// provider's authentication error on the first call. SDK retries are off.
func NewOpenAIClient(apiKey, baseURL string, model openai.ChatModel, httpClient *http.Client) *OpenAIClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}
}

// Model reports the chat model in use.
func (c *OpenAIClient) Model() string { return string(c.model) }

func (c *OpenAIClient) Chat(ctx context.Context, message string) (string, error) {
	if c == nil || c.client == nil {
		return "", &SuggestionError{Err: errors.New("nil chat client")}
	}
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(message),
		Temperature: openai.Float(defaultChatTemperature),
	})
	if err != nil {
		return "", &SuggestionError{Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &SuggestionError{Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
