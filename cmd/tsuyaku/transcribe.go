package main

import (
	"context"
	"fmt"
	"os"

	"github.com/harunnryd/tsuyaku/internal/config"
	"github.com/harunnryd/tsuyaku/internal/model"
	"github.com/harunnryd/tsuyaku/internal/model/contract"

	"github.com/spf13/cobra"
)

var (
	transcribeModel    string
	transcribeLanguage string
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe an audio file",
	Long:  `Transcribe an audio file with the configured provider. The Gemini variants do not support transcription and report an unsupported operation.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ExpandPath(args[0])
		if err != nil {
			return err
		}
		audio, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open audio: %w", err)
		}
		defer audio.Close()

		return executeWithClient(cmd, false, func(ctx context.Context, router model.ModelRouter, _ *model.Client) error {
			out, err := router.Transcribe(ctx, transcribeModel, contract.TranscriptionRequest{
				Audio:    audio,
				Language: transcribeLanguage,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		})
	},
}

func init() {
	transcribeCmd.Flags().StringVarP(&transcribeModel, "model", "m", "", "model identifier")
	transcribeCmd.Flags().StringVar(&transcribeLanguage, "language", "", "spoken language hint")
	rootCmd.AddCommand(transcribeCmd)
}
