package main

import (
	"fmt"
	"os"

	"github.com/harunnryd/tsuyaku/internal/config"
	"github.com/harunnryd/tsuyaku/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tsuyaku",
	Short: "Chat with Google Gemini through a vendor-neutral message format",
	Long: `Tsuyaku converts vendor-neutral chat conversations into Google Gemini
generateContent requests and converts the replies back, including tool calls.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tsuyaku/config.yaml)")
	rootCmd.PersistentFlags().String("log_level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("provider.variant", config.DefaultProviderVariant, "transport variant (google-rest, google)")
	rootCmd.PersistentFlags().String("provider.model", config.DefaultProviderModel, "default model")
}
