package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ppiankov/brandguard/internal/model"
	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder calls the OpenAI embeddings endpoint
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	timeout    time.Duration
	dimensions atomic.Int64
}

// NewOpenAIEmbedder creates an embedder from configuration
func NewOpenAIEmbedder(cfg model.EmbeddingConfig, httpClient *http.Client) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for embeddings")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	embeddingModel := openai.EmbeddingModel(cfg.Model)
	if embeddingModel == "" {
		embeddingModel = openai.SmallEmbedding3
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   embeddingModel,
		timeout: timeout,
	}, nil
}

// Name returns the embedder identifier
func (e *OpenAIEmbedder) Name() string {
	return "openai-" + string(e.model)
}

// Dimensions returns the vector size seen on the last response
func (e *OpenAIEmbedder) Dimensions() int {
	return int(e.dimensions.Load())
}

// Embed requests one embedding
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, &model.EmbeddingError{Input: text, Err: fmt.Errorf("OpenAI API error: %w", err)}
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, &model.EmbeddingError{Input: text, Err: fmt.Errorf("no embedding returned")}
	}

	vec := resp.Data[0].Embedding
	e.dimensions.Store(int64(len(vec)))
	return vec, nil
}
