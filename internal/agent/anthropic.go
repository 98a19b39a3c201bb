package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicAgent drafts through the Anthropic Messages API
type AnthropicAgent struct {
	client anthropic.Client
	config model.AgentConfig
	logger *zap.Logger
}

// NewAnthropicAgent creates an Anthropic-backed agent
func NewAnthropicAgent(config model.AgentConfig, httpClient *http.Client, logger *zap.Logger) (*AnthropicAgent, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []aoption.RequestOption{
		aoption.WithAPIKey(strings.TrimSpace(config.APIKey)),
		aoption.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, aoption.WithBaseURL(strings.TrimSpace(config.BaseURL)))
	}
	if httpClient != nil {
		opts = append(opts, aoption.WithHTTPClient(httpClient))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnthropicAgent{
		client: anthropic.NewClient(opts...),
		config: config,
		logger: logger,
	}, nil
}

// Name returns the provider name
func (a *AnthropicAgent) Name() string {
	return "anthropic"
}

// Draft sends one message and decodes the text blocks of the reply
func (a *AnthropicAgent) Draft(ctx context.Context, in Input) (*Output, error) {
	modelName := a.config.Model
	if modelName == "" {
		modelName = defaultAnthropicModel
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout(a.config.Timeout))
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelName),
		MaxTokens: int64(maxTokens(a.config.MaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(in))),
		},
	}
	params.System = []anthropic.TextBlockParam{{Text: SystemPrompt}}
	if a.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(a.config.Temperature))
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: Anthropic API error: %w", model.ErrAgentUnreachable, err)
	}
	a.logger.Debug("anthropic draft",
		zap.String("model", modelName),
		zap.Int("iteration", in.Iteration),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, fmt.Errorf("%w: no text in Anthropic response", model.ErrSchemaInvalid)
	}
	return ParseOutput(text.String())
}
