package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/harunnryd/tsuyaku/internal/model"
	"github.com/harunnryd/tsuyaku/internal/model/contract"

	"github.com/spf13/cobra"
)

type chatOptions struct {
	file     string
	model    string
	system   string
	tools    bool
	maxTurns int
	jsonOut  bool
}

var chatOpts chatOptions

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Send a conversation to Gemini and print the reply",
	Long: `Send a single prompt, or a conversation file (--file), to Gemini.
With --tools the built-in tools are offered and executed until the model
answers or the turn limit is reached.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildChatRequest(chatOpts, args)
		if err != nil {
			return err
		}

		return executeWithClient(cmd, chatOpts.tools, func(ctx context.Context, _ model.ModelRouter, client *model.Client) error {
			result, err := client.Run(ctx, req)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result, chatOpts.jsonOut)
		})
	},
}

func buildChatRequest(opts chatOptions, args []string) (contract.CompletionRequest, error) {
	var req contract.CompletionRequest
	if opts.file != "" {
		loaded, err := loadConversation(opts.file)
		if err != nil {
			return req, err
		}
		req = loaded
	}

	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		req.Messages = append(req.Messages, contract.UserMessage(args[0]))
	}
	if len(req.Messages) == 0 {
		return req, fmt.Errorf("nothing to send: pass a prompt or --file")
	}

	// The last system message wins, so appending overrides one from --file.
	if opts.system != "" {
		req.Messages = append(req.Messages, contract.SystemMessage(opts.system))
	}
	if opts.model != "" {
		req.Model = opts.model
	}
	if opts.maxTurns > 0 {
		if req.Options == nil {
			req.Options = map[string]interface{}{}
		}
		req.Options[model.OptionMaxTurns] = opts.maxTurns
	}
	return req, nil
}

func printResult(w io.Writer, result *model.Result, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Response)
	}

	if len(result.Invocations) > 0 {
		fmt.Fprintln(w, NewTableFormatter().FormatInvocations(result.Invocations))
	}

	resp := result.Response
	if resp.FinishReason == contract.FinishToolCalls {
		if result.Exhausted {
			fmt.Fprintf(w, "Stopped after %d turns with pending tool calls:\n", result.Turns)
		} else {
			fmt.Fprintln(w, "Model requested tool calls (run with --tools to execute built-ins):")
		}
		for _, call := range resp.Message.ToolCalls {
			fmt.Fprintf(w, "  %s %s(%s)\n", call.ID, call.FunctionName, call.Arguments)
		}
		return nil
	}

	fmt.Fprintln(w, resp.Text())
	return nil
}

func init() {
	chatCmd.Flags().StringVarP(&chatOpts.file, "file", "f", "", "conversation file (YAML or JSON)")
	chatCmd.Flags().StringVarP(&chatOpts.model, "model", "m", "", "model identifier, optionally prefixed with a variant (google-rest:gemini-2.5-flash)")
	chatCmd.Flags().StringVarP(&chatOpts.system, "system", "s", "", "system prompt")
	chatCmd.Flags().BoolVar(&chatOpts.tools, "tools", false, "offer and execute built-in tools")
	chatCmd.Flags().IntVar(&chatOpts.maxTurns, "max-turns", 0, "maximum model calls in the tool loop (default chat.max_turns)")
	chatCmd.Flags().BoolVar(&chatOpts.jsonOut, "json", false, "print the canonical response as JSON")
	rootCmd.AddCommand(chatCmd)
}
