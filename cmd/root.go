package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/server"
)

const (
	app = "resume-matcher"
)

type Config struct {
	Adzuna *AdzunaConfig    `mapstructure:"adzuna"`
	Match  matching.Options `mapstructure:"match"`
	AI     *AIConfig        `mapstructure:"ai"`
	Server server.Config    `mapstructure:"server"`
}

type AdzunaConfig struct {
	Country        string `mapstructure:"country"`
	AppID          string `mapstructure:"app-id"`
	AppKey         string `mapstructure:"app-key" json:"-"`
	AppKeyFile     string `mapstructure:"app-key-file"`
	ResultsPerPage int    `mapstructure:"results-per-page"`
	Pages          int    `mapstructure:"pages"`
	UserAgent      string `mapstructure:"user-agent"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Chunker  string        `mapstructure:"chunker"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key" json:"-"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher ranks job listings by how well they fit a resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"adzuna.app-id":          "RM_ADZUNA_APP_ID",
		"adzuna.app-key":         "RM_ADZUNA_APP_KEY",
		"adzuna.app-key-file":    "RM_ADZUNA_APP_KEY_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	opts := matching.DefaultOptions()

	viper.SetDefault("adzuna.country", "in")
	viper.SetDefault("adzuna.results-per-page", 50)
	viper.SetDefault("adzuna.pages", 1)

	viper.SetDefault("match.representation", string(opts.Representation))
	viper.SetDefault("match.mode", string(opts.Mode))
	viper.SetDefault("match.threshold", opts.Threshold)
	viper.SetDefault("match.top-k", opts.TopK)
	viper.SetDefault("match.location", opts.Location)
	viper.SetDefault("match.excerpt-length", opts.ExcerptLength)
	viper.SetDefault("match.concurrency", 4)

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.chunker", "tagger")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	viper.SetDefault("server.listen", server.DefaultListen)
	viper.SetDefault("server.max-upload-mb", server.DefaultMaxUploadMB)
	viper.SetDefault("server.match-timeout", server.DefaultMatchTimeout)
	viper.SetDefault("server.allowed-extensions", []string{".pdf"})
}

func initConfig() {
	// Only match and serve need a config.
	if matchCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The default config file is optional, everything can come from the environment.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
