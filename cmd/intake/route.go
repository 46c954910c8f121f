package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/routing"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route [message]",
	Short: "Show how a message would be routed",
	Long:  `Runs the routing ladder against a single message and prints the chosen agent and the extracted signals. Useful for tuning the phrase tables.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, evaluator, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		previous, _ := cmd.Flags().GetString("previous")
		preferred, _ := cmd.Flags().GetString("preferred")

		input := strings.Join(args, " ")
		engine := routing.NewEngine(registry, evaluator, nil)

		target := engine.Route(input, routing.Context{PreviousAgent: agent.Type(previous)}, agent.Type(preferred))
		signals := routing.AnalyzeSignals(input)

		out, err := json.MarshalIndent(map[string]any{
			"agent":   target,
			"signals": signals,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().String("previous", "", "agent handling the previous turn (empty means first turn)")
	routeCmd.Flags().String("preferred", "", "preferred agent to try first")
}
