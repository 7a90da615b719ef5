package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/harunnryd/tsuyaku/internal/model"
	"github.com/harunnryd/tsuyaku/internal/model/contract"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

var errExit = errors.New("exit")

type conversationRunner interface {
	Run(ctx context.Context, req contract.CompletionRequest) (*model.Result, error)
}

// REPL keeps a conversation in memory and sends it on every line.
type REPL struct {
	client  conversationRunner
	reader  *bufio.Reader
	out     io.Writer
	model   string
	system  string
	history []contract.Message
}

func NewREPL(client conversationRunner, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		client: client,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (r *REPL) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Tsuyaku interactive session")
	fmt.Fprintln(r.out, "Type '/help' for commands, '/exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(r.out, "> ")
		text, err := r.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		if lineErr := r.handleLine(ctx, text); lineErr != nil {
			if errors.Is(lineErr, errExit) || ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(r.out, "error: %v\n", lineErr)
		}
		if eof {
			return nil
		}
	}
}

func (r *REPL) handleLine(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "/") {
		return r.handleCommand(text)
	}

	messages := make([]contract.Message, 0, len(r.history)+2)
	if r.system != "" {
		messages = append(messages, contract.SystemMessage(r.system))
	}
	messages = append(messages, r.history...)
	messages = append(messages, contract.UserMessage(text))

	result, err := r.client.Run(ctx, contract.CompletionRequest{Model: r.model, Messages: messages})
	if err != nil {
		return err
	}

	// Keep everything but the system prompt, which is re-applied per call.
	r.history = r.history[:0:0]
	for _, m := range result.Messages {
		if m.Role != contract.RoleSystem {
			r.history = append(r.history, m)
		}
	}
	return printResult(r.out, result, false)
}

func (r *REPL) handleCommand(input string) error {
	parts, parseErr := shlex.Split(input)
	if parseErr != nil {
		parts = strings.Fields(input)
	}
	if len(parts) == 0 {
		return nil
	}
	cmd := parts[0]
	args := parts[1:]

	slog.Debug("Executing slash command", "cmd", cmd)

	switch cmd {
	case "/exit", "/quit":
		return errExit
	case "/reset":
		r.history = nil
		fmt.Fprintln(r.out, "Conversation cleared.")
	case "/system":
		r.system = strings.Join(args, " ")
		if r.system == "" {
			fmt.Fprintln(r.out, "System prompt cleared.")
		} else {
			fmt.Fprintf(r.out, "System prompt set: %s\n", r.system)
		}
	case "/model":
		if len(args) != 1 {
			return fmt.Errorf("usage: /model <[variant:]model>")
		}
		r.model = args[0]
		fmt.Fprintf(r.out, "Model set: %s\n", r.model)
	case "/history":
		for _, m := range r.history {
			fmt.Fprintf(r.out, "[%s] %s\n", m.Role, describeMessage(m))
		}
	case "/help":
		fmt.Fprintln(r.out, helpText())
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

func describeMessage(m contract.Message) string {
	if len(m.ToolCalls) > 0 {
		names := make([]string, 0, len(m.ToolCalls))
		for _, c := range m.ToolCalls {
			names = append(names, c.FunctionName)
		}
		return "tool calls: " + strings.Join(names, ", ")
	}
	return truncateString(oneLine(m.Text()), 80)
}

func helpText() string {
	return strings.Join([]string{
		"/system <text>   set the system prompt (empty clears it)",
		"/model <id>      switch model, e.g. google:gemini-2.5-pro",
		"/reset           forget the conversation",
		"/history         show the conversation so far",
		"/exit            quit",
	}, "\n")
}

var replTools bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithClient(cmd, replTools, func(ctx context.Context, _ model.ModelRouter, client *model.Client) error {
			return NewREPL(client, cmd.InOrStdin(), cmd.OutOrStdout()).Start(ctx)
		})
	},
}

func init() {
	replCmd.Flags().BoolVar(&replTools, "tools", false, "offer and execute built-in tools")
	rootCmd.AddCommand(replCmd)
}
