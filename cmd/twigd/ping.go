package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/TwigSlot/twig-server/internal/graph"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the graph store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := graph.NewNeo4jClient(cfg.GraphConfig())
		if err != nil {
			return err
		}

		slog.Debug("connecting to graph store", "uri", cfg.Neo4j.URI)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer client.Close(ctx)

		status := client.Health(ctx)
		cmd.Printf("%s: %s\n", status.State, status.Message)
		if !status.IsHealthy() {
			return fmt.Errorf("graph store is %s", status.State)
		}
		return nil
	},
}
