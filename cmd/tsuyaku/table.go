package main

import (
	"strings"

	"github.com/harunnryd/tsuyaku/internal/model"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

type TableFormatter struct {
	headerStyle  lipgloss.Style
	oddRowStyle  lipgloss.Style
	evenRowStyle lipgloss.Style
	borderStyle  lipgloss.Style
}

func NewTableFormatter() *TableFormatter {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	return &TableFormatter{
		headerStyle: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Align(lipgloss.Center).
			Padding(0, 1),
		oddRowStyle: lipgloss.NewStyle().
			Foreground(gray).
			Padding(0, 1),
		evenRowStyle: lipgloss.NewStyle().
			Foreground(lightGray).
			Padding(0, 1),
		borderStyle: lipgloss.NewStyle().
			Foreground(purple),
	}
}

// FormatInvocations renders executed tool calls, one row per call.
func (f *TableFormatter) FormatInvocations(invocations []model.ToolInvocation) string {
	if len(invocations) == 0 {
		return "No tool calls"
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return f.headerStyle
			case row%2 == 0:
				return f.evenRowStyle
			default:
				return f.oddRowStyle
			}
		}).
		Headers("Call ID", "Tool", "Arguments", "Result")

	for _, inv := range invocations {
		result := inv.Output
		if inv.Err != nil {
			result = "error: " + inv.Err.Error()
		}
		t.Row(
			truncateString(inv.Call.ID, 32),
			inv.Call.FunctionName,
			truncateString(oneLine(inv.Call.Arguments), 40),
			truncateString(oneLine(result), 40),
		)
	}

	return t.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
