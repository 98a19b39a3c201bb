package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/brandguard/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Zero Trust Webinar", "zero-trust-webinar"},
		{"Q3: Launch/Recap?", "q3_-launch_recap"},
		{"  ", "bundle"},
		{"../etc", "etc"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("a", 200)
	if got := sanitizeFilename(long); len(got) != 80 {
		t.Errorf("expected 80 characters, got %d", len(got))
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "****"},
		{"sk-abcdefghijkl", "sk-a****ijkl"},
	}
	for _, tt := range tests {
		if got := mask(tt.in); got != tt.want {
			t.Errorf("mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadConfig_EnvAndFileOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	if err := registerDefaults(model.DefaultConfig()); err != nil {
		t.Fatalf("registerDefaults failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "runner:\n  max_iterations: 5\n  agent_timeout: 45s\ncritic:\n  channels:\n    email:\n      subject_max_chars: 50\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	t.Setenv("BRANDGUARD_AGENT_PROVIDER", "ollama")
	t.Setenv("BRANDGUARD_AGENT_BASE_URL", "http://ollama:11434")
	viper.SetEnvPrefix("BRANDGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Runner.MaxIterations != 5 {
		t.Errorf("expected max_iterations 5 from file, got %d", cfg.Runner.MaxIterations)
	}
	if cfg.Runner.AgentTimeout != 45*time.Second {
		t.Errorf("expected agent_timeout 45s, got %v", cfg.Runner.AgentTimeout)
	}
	if got := cfg.Critic.Channels[model.ChannelEmail].SubjectMaxChars; got != 50 {
		t.Errorf("expected email subject limit 50, got %d", got)
	}
	if got := cfg.Critic.Channels[model.ChannelLinkedIn].MaxChars; got != 3000 {
		t.Errorf("expected linkedin default 3000 to survive, got %d", got)
	}
	if cfg.Agent.Provider != "ollama" || cfg.Agent.BaseURL != "http://ollama:11434" {
		t.Errorf("env overrides not applied: %+v", cfg.Agent)
	}
	if cfg.Verifier.SupportThreshold != 0.7 {
		t.Errorf("expected default support threshold, got %v", cfg.Verifier.SupportThreshold)
	}
}

func TestApplyProviderEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-openai-test")

	cfg := model.DefaultConfig()
	cfg.Agent.Provider = "anthropic"
	cfg.Embedding.Provider = "openai"
	applyProviderEnv(&cfg)

	if cfg.Agent.APIKey != "sk-ant-test" {
		t.Errorf("expected anthropic key, got %q", cfg.Agent.APIKey)
	}
	if cfg.Embedding.APIKey != "sk-openai-test" {
		t.Errorf("expected openai embedding key, got %q", cfg.Embedding.APIKey)
	}

	cfg.Agent.APIKey = "explicit"
	applyProviderEnv(&cfg)
	if cfg.Agent.APIKey != "explicit" {
		t.Error("explicit key must not be replaced")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if cfg.Runner.MaxIterations != 3 || cfg.Runner.AgentTimeout != 2*time.Minute {
		t.Errorf("unexpected runner config %+v", cfg.Runner)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"analyze", "batch", "config", "critique", "ingest", "run", "search", "serve", "verify", "version"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}
