package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is set at build time with -ldflags
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "brandguard",
	Short: "BrandGuard - quality-gated marketing copy with grounded claims",
	Long: `BrandGuard drafts channel-specific marketing copy (LinkedIn, Facebook,
email, web) for an event brief and refuses to export it silently unless
every draft passes the quality rubric and every factual claim is traced
back to a chunk of the brand and product corpus.

Drafts that still fail after the iteration budget are exported with flags
that name the unmet gates.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("brandguard v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.brandguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering config defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.brandguard")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// BRANDGUARD_AGENT_PROVIDER overrides agent.provider
	viper.SetEnvPrefix("BRANDGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so env overrides apply
func registerDefaults(cfg model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults("", tree)

	// omitempty hides these from the marshaled tree
	for _, key := range []string{
		"agent.api_key", "agent.base_url",
		"embedding.api_key", "embedding.base_url",
		"http.http_proxy", "http.https_proxy", "http.no_proxy",
	} {
		if !viper.IsSet(key) {
			viper.SetDefault(key, "")
		}
	}
	return nil
}

func setDefaults(prefix string, tree map[string]interface{}) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok && len(sub) > 0 {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig resolves flags, environment, config file and defaults into one Config
func loadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	applyProviderEnv(&cfg)
	return cfg, nil
}

// applyProviderEnv falls back to the providers' conventional environment variables
func applyProviderEnv(cfg *model.Config) {
	if cfg.Agent.APIKey == "" {
		switch strings.ToLower(cfg.Agent.Provider) {
		case "openai":
			cfg.Agent.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.Agent.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.Agent.BaseURL == "" && strings.EqualFold(cfg.Agent.Provider, "ollama") {
		cfg.Agent.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if cfg.Embedding.APIKey == "" && strings.EqualFold(cfg.Embedding.Provider, "openai") {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}
