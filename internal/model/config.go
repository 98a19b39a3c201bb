package model

import "time"

// Config holds all BrandGuard settings
type Config struct {
	Runner    RunnerConfig    `yaml:"runner" mapstructure:"runner"`
	Critic    CriticConfig    `yaml:"critic" mapstructure:"critic"`
	Verifier  VerifierConfig  `yaml:"verifier" mapstructure:"verifier"`
	Knowledge KnowledgeConfig `yaml:"knowledge" mapstructure:"knowledge"`
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Agent     AgentConfig     `yaml:"agent" mapstructure:"agent"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// RunnerConfig controls the iteration loop
type RunnerConfig struct {
	MaxIterations     int           `yaml:"max_iterations" mapstructure:"max_iterations"`
	AgentTimeout      time.Duration `yaml:"agent_timeout" mapstructure:"agent_timeout"`
	RetrievalK        int           `yaml:"retrieval_k" mapstructure:"retrieval_k"`
	ExtractBodyClaims bool          `yaml:"extract_body_claims" mapstructure:"extract_body_claims"` // Also verify claim-like sentences found in bodies
	Workers           int           `yaml:"workers" mapstructure:"workers"`                         // Per-iteration critique/verify concurrency
}

// ChannelConstraints are the length bounds and score thresholds of one channel.
// A zero bound means the check does not apply.
type ChannelConstraints struct {
	MaxChars         int `yaml:"max_chars" mapstructure:"max_chars"`                   // headline+body+cta characters
	BodyMaxWords     int `yaml:"body_max_words" mapstructure:"body_max_words"`         // email body
	SubjectMaxChars  int `yaml:"subject_max_chars" mapstructure:"subject_max_chars"`   // email subject (headline)
	HeadlineMaxWords int `yaml:"headline_max_words" mapstructure:"headline_max_words"` // web headline
	SubheadMaxWords  int `yaml:"subhead_max_words" mapstructure:"subhead_max_words"`   // web subhead (body)
	BrandVoiceMin    int `yaml:"brand_voice_min" mapstructure:"brand_voice_min"`
	CTAClarityMin    int `yaml:"cta_clarity_min" mapstructure:"cta_clarity_min"`
}

// RubricWeights are the heuristic weights of the brand voice and CTA scores
type RubricWeights struct {
	BrandBase             int `yaml:"brand_base" mapstructure:"brand_base"`
	SecondPersonBonus     int `yaml:"second_person_bonus" mapstructure:"second_person_bonus"`
	NoSecondPersonPenalty int `yaml:"no_second_person_penalty" mapstructure:"no_second_person_penalty"`
	NumberBonus           int `yaml:"number_bonus" mapstructure:"number_bonus"`
	VerbBonus             int `yaml:"verb_bonus" mapstructure:"verb_bonus"`
	MaxVerbBonus          int `yaml:"max_verb_bonus" mapstructure:"max_verb_bonus"`
	BuzzwordPenalty       int `yaml:"buzzword_penalty" mapstructure:"buzzword_penalty"`
	PassivePenalty        int `yaml:"passive_penalty" mapstructure:"passive_penalty"`

	CTABase           int `yaml:"cta_base" mapstructure:"cta_base"`
	CTAVerbBonus      int `yaml:"cta_verb_bonus" mapstructure:"cta_verb_bonus"`
	CTABenefitBonus   int `yaml:"cta_benefit_bonus" mapstructure:"cta_benefit_bonus"`
	CTASpecificBonus  int `yaml:"cta_specific_bonus" mapstructure:"cta_specific_bonus"`
	CTAGenericPenalty int `yaml:"cta_generic_penalty" mapstructure:"cta_generic_penalty"`
}

// CriticConfig configures draft scoring
type CriticConfig struct {
	Channels map[Channel]ChannelConstraints `yaml:"channels" mapstructure:"channels"`
	Rubric   RubricWeights                  `yaml:"rubric" mapstructure:"rubric"`
}

// VerifierConfig holds the claim similarity thresholds
type VerifierConfig struct {
	SupportThreshold float64 `yaml:"support_threshold" mapstructure:"support_threshold"`
	WeakThreshold    float64 `yaml:"weak_threshold" mapstructure:"weak_threshold"`
}

// KnowledgeConfig configures the knowledge store and ingestion
type KnowledgeConfig struct {
	DBPath        string `yaml:"db_path" mapstructure:"db_path"`
	CorpusDir     string `yaml:"corpus_dir" mapstructure:"corpus_dir"`
	ChunkSize     int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	SeedWhenEmpty bool   `yaml:"seed_when_empty" mapstructure:"seed_when_empty"`
}

// EmbeddingConfig selects the embedding backend
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // hash, openai
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// AgentConfig selects and tunes the drafting agent
type AgentConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature       float32 `yaml:"temperature" mapstructure:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig configures the embedding cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// HTTPConfig controls outbound fetches for URL ingestion and agent clients
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ServerConfig configures the HTTP tool server
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// OutputConfig controls where run artifacts are written
type OutputConfig struct {
	BundlePath string `yaml:"bundle_path" mapstructure:"bundle_path"`
	AuditDir   string `yaml:"audit_dir" mapstructure:"audit_dir"`
	Format     string `yaml:"format" mapstructure:"format"` // json, yaml
	Verbose    bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultChannelConstraints returns the built-in channel rule table
func DefaultChannelConstraints() map[Channel]ChannelConstraints {
	return map[Channel]ChannelConstraints{
		ChannelLinkedIn: {MaxChars: 3000, BrandVoiceMin: 7, CTAClarityMin: 7},
		ChannelFacebook: {MaxChars: 500, BrandVoiceMin: 7, CTAClarityMin: 7},
		ChannelEmail:    {BodyMaxWords: 300, SubjectMaxChars: 60, BrandVoiceMin: 7, CTAClarityMin: 7},
		ChannelWeb:      {HeadlineMaxWords: 10, SubheadMaxWords: 50, BrandVoiceMin: 7, CTAClarityMin: 7},
	}
}

// DefaultRubric returns the built-in rubric weights
func DefaultRubric() RubricWeights {
	return RubricWeights{
		BrandBase:             6,
		SecondPersonBonus:     1,
		NoSecondPersonPenalty: 2,
		NumberBonus:           1,
		VerbBonus:             1,
		MaxVerbBonus:          2,
		BuzzwordPenalty:       2,
		PassivePenalty:        1,

		CTABase:           3,
		CTAVerbBonus:      3,
		CTABenefitBonus:   2,
		CTASpecificBonus:  1,
		CTAGenericPenalty: 4,
	}
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Runner: RunnerConfig{
			MaxIterations:     3,
			AgentTimeout:      2 * time.Minute,
			RetrievalK:        5,
			ExtractBodyClaims: false,
			Workers:           4,
		},
		Critic: CriticConfig{
			Channels: DefaultChannelConstraints(),
			Rubric:   DefaultRubric(),
		},
		Verifier: VerifierConfig{
			SupportThreshold: 0.7,
			WeakThreshold:    0.5,
		},
		Knowledge: KnowledgeConfig{
			DBPath:        "brandguard.db",
			CorpusDir:     "corpus",
			ChunkSize:     500,
			ChunkOverlap:  50,
			SeedWhenEmpty: true,
		},
		Embedding: EmbeddingConfig{
			Provider:   "hash",
			Dimensions: 256,
			Timeout:    30,
		},
		Agent: AgentConfig{
			Provider:          "openai",
			Timeout:           90,
			MaxTokens:         2000,
			Temperature:       0.7,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "BrandGuard/0.1 (+https://github.com/ppiankov/brandguard)",
			MaxBodyBytes:      2_000_000,
			RequestsPerSecond: 1,
			RespectRobots:     true,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8787,
		},
		Output: OutputConfig{
			BundlePath: "output/bundle.json",
			AuditDir:   "output",
			Format:     "json",
		},
	}
}
