package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

// OllamaAgent drafts through a local Ollama server's chat endpoint
type OllamaAgent struct {
	baseURL    string
	httpClient *http.Client
	config     model.AgentConfig
	logger     *zap.Logger
}

// Ollama API structures
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count,omitempty"`
	EvalCount       int           `json:"eval_count,omitempty"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaAgent creates an Ollama-backed agent
func NewOllamaAgent(config model.AgentConfig, httpClient *http.Client, logger *zap.Logger) (*OllamaAgent, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OllamaAgent{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		config:     config,
		logger:     logger,
	}, nil
}

// Name returns the provider name
func (a *OllamaAgent) Name() string {
	return "ollama"
}

// Draft calls /api/chat in JSON format mode
func (a *OllamaAgent) Draft(ctx context.Context, in Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout(a.config.Timeout))
	defer cancel()

	apiReq := ollamaRequest{
		Model: a.config.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildPrompt(in)},
		},
		Stream: false,
		Format: "json",
		Options: ollamaOptions{
			Temperature: a.config.Temperature,
			NumPredict:  maxTokens(a.config.MaxTokens),
		},
	}

	start := time.Now()
	resp, err := a.makeRequest(ctx, apiReq)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("ollama draft",
		zap.String("model", resp.Model),
		zap.Int("iteration", in.Iteration),
		zap.Int("tokens", resp.PromptEvalCount+resp.EvalCount),
		zap.Duration("elapsed", time.Since(start)))

	content := strings.TrimSpace(resp.Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty response from Ollama", model.ErrSchemaInvalid)
	}
	return ParseOutput(content)
}

// makeRequest sends the HTTP request to the Ollama API
func (a *OllamaAgent) makeRequest(ctx context.Context, apiReq ollamaRequest) (*ollamaResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama request failed: %w", model.ErrAgentUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", model.ErrAgentUnreachable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%w: ollama API error (HTTP %d): %s", model.ErrAgentUnreachable, resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("%w: ollama API error (HTTP %d): %s", model.ErrAgentUnreachable, resp.StatusCode, string(respBody))
	}

	var out ollamaResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode Ollama response: %v", model.ErrSchemaInvalid, err)
	}
	return &out, nil
}
