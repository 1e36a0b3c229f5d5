package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
)

// Version is set at build time via -ldflags.
var Version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "grader",
	Short: "Automated rubric-based grading service",
	Long: `grader analyzes teacher solutions into grading blueprints and scores
student submissions against them using an LLM, delivering results to
callback URLs or directly on the command line.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.grader/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".grader"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GRADER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("llm.api_key", "OPENAI_API_KEY")

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.cors_origins", []string{"*"})

	viper.SetDefault("store.type", "memory")
	viper.SetDefault("store.path", "grader.db")

	viper.SetDefault("llm.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.model", "gpt-4o")
	viper.SetDefault("llm.timeout", "120s")

	viper.SetDefault("fetch.timeout", "60s")
	viper.SetDefault("callback.timeout", "30s")

	viper.SetDefault("scheduler.max_concurrent_jobs", 4)
	viper.SetDefault("scheduler.queue_size", 100)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "localhost:4318")
	viper.SetDefault("tracing.environment", "development")

	viper.SetDefault("cleanup.enabled", true)
	viper.SetDefault("cleanup.retention_days", 7)
	viper.SetDefault("cleanup.interval", "24h")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)

	viper.SetDefault("tls.enabled", false)
	viper.SetDefault("tls.cert_file", "grader.crt")
	viper.SetDefault("tls.key_file", "grader.key")
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}
