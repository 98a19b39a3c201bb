package agent

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
	"github.com/ppiankov/brandguard/internal/worker"
	"go.uber.org/zap"
)

// NewAgent creates a drafting agent from configuration.
// The agent is rate limited when a request rate is configured.
func NewAgent(config model.AgentConfig, httpClient *http.Client, logger *zap.Logger) (Agent, error) {
	var a Agent
	var err error

	switch strings.ToLower(config.Provider) {
	case "openai":
		a, err = NewOpenAIAgent(config, httpClient, logger)

	case "anthropic", "claude":
		a, err = NewAnthropicAgent(config, httpClient, logger)

	case "ollama":
		a, err = NewOllamaAgent(config, httpClient, logger)

	case "":
		return nil, fmt.Errorf("no agent provider configured (set agent.provider to openai, anthropic or ollama)")

	default:
		return nil, fmt.Errorf("unknown agent provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	if config.RequestsPerSecond > 0 {
		return NewRateLimited(a, worker.NewLimiter(config.RequestsPerSecond, config.Burst)), nil
	}
	return a, nil
}
