package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/brandguard/internal/model"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIAgent drafts through the OpenAI chat completions API in JSON mode
type OpenAIAgent struct {
	client *openai.Client
	config model.AgentConfig
	logger *zap.Logger
}

// NewOpenAIAgent creates an OpenAI-backed agent
func NewOpenAIAgent(config model.AgentConfig, httpClient *http.Client, logger *zap.Logger) (*OpenAIAgent, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIAgent{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}, nil
}

// Name returns the provider name
func (a *OpenAIAgent) Name() string {
	return "openai"
}

// Draft requests one JSON object holding every channel's draft
func (a *OpenAIAgent) Draft(ctx context.Context, in Input) (*Output, error) {
	modelName := a.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout(a.config.Timeout))
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(in)},
		},
		MaxTokens:   maxTokens(a.config.MaxTokens),
		Temperature: a.config.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI API error: %w", model.ErrAgentUnreachable, err)
	}
	a.logger.Debug("openai draft",
		zap.String("model", modelName),
		zap.Int("iteration", in.Iteration),
		zap.Int("tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from OpenAI", model.ErrSchemaInvalid)
	}
	return ParseOutput(strings.TrimSpace(resp.Choices[0].Message.Content))
}

// callTimeout converts a seconds setting into a per-call timeout
func callTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return 90 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

func maxTokens(n int) int {
	if n <= 0 {
		return 2000
	}
	return n
}
