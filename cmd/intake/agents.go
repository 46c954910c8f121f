package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/vozlegal/intake/internal/agent"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List configured agent personas",
	Long:  `Display the agent roster with language, skills, and staffed hours.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, evaluator, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		now := time.Now().In(evaluator.Location())
		fmt.Println(formatAgentTable(registry, evaluator, now))
		return nil
	},
}

func formatAgentTable(registry *agent.Registry, evaluator *agent.Evaluator, now time.Time) string {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	headerStyle := lipgloss.NewStyle().
		Foreground(purple).
		Bold(true).
		Align(lipgloss.Center).
		Padding(0, 1)
	oddRowStyle := lipgloss.NewStyle().
		Foreground(gray).
		Padding(0, 1)
	evenRowStyle := lipgloss.NewStyle().
		Foreground(lightGray).
		Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers("Type", "Name", "Lang", "Hours", "Skills", "Now")

	for _, def := range registry.Types() {
		d, err := registry.Get(def)
		if err != nil {
			continue
		}

		status := "off"
		if available, err := evaluator.IsAvailable(d.Type, now); err == nil && available {
			status = "on"
		}

		t.Row(
			d.Type.String(),
			d.Name,
			string(d.Language),
			formatHours(d.Availability),
			strings.Join(d.Skills, ", "),
			status,
		)
	}

	return t.String()
}

func formatHours(a agent.Availability) string {
	if len(a.Days) == 7 {
		return "24/7"
	}
	days := make([]string, len(a.Days))
	for i, d := range a.Days {
		days[i] = d.String()[:3]
	}
	return fmt.Sprintf("%s %s-%s", strings.Join(days, ","), a.Hours.Start, a.Hours.End)
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
