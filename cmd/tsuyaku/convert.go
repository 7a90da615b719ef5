package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/harunnryd/tsuyaku/internal/config"
	"github.com/harunnryd/tsuyaku/internal/model/providers/gemini/rest"
	"github.com/harunnryd/tsuyaku/internal/model/providers/gemini/sdk"

	"github.com/spf13/cobra"
)

var (
	convertFile    string
	convertVariant string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Run the converters offline",
	Long:  `Show what would be sent to Gemini for a conversation, or how a Gemini reply is read back. No network calls are made.`,
}

var convertRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Print the generateContent payload for a conversation file",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, convertFile)
		if err != nil {
			return err
		}
		req, err := parseConversation(raw)
		if err != nil {
			return err
		}
		if loadedCfg, err := loadConfigForCommand(cmd); err == nil {
			req.Options = mergeOptions(loadedCfg.Generation.Options(), req.Options)
		}

		var payload interface{}
		switch convertVariant {
		case config.VariantREST:
			payload, err = rest.Converter{}.ConvertRequest(req)
		case config.VariantSDK:
			payload, err = sdk.Converter{}.ConvertRequest(req)
		default:
			return fmt.Errorf("unknown variant %q", convertVariant)
		}
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), payload)
	},
}

var convertResponseCmd = &cobra.Command{
	Use:   "response",
	Short: "Convert a raw generateContent reply (JSON) into the canonical response",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, convertFile)
		if err != nil {
			return err
		}

		resp, err := rest.Converter{}.ConvertResponse(raw)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	},
}

// mergeOptions layers override on top of base without mutating either.
func mergeOptions(base, override map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// readInput reads path, or stdin when path is "-" or empty.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(expanded)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	convertCmd.PersistentFlags().StringVarP(&convertFile, "file", "f", "", "input file (conversation for request, reply JSON for response; '-' reads stdin)")
	convertRequestCmd.Flags().StringVar(&convertVariant, "variant", config.VariantREST, "payload shape to print (google-rest, google)")
	convertCmd.AddCommand(convertRequestCmd)
	convertCmd.AddCommand(convertResponseCmd)
	rootCmd.AddCommand(convertCmd)
}
