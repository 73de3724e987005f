package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *Cli) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync queue size, last sync time and server reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context())
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	report, err := c.sync.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sync status: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(report)
	}

	c.io.Println("=== Sync Status ===")
	c.io.Println()
	if report.ServerReachable {
		c.io.Printf("Server:       %s reachable\n", c.mark(true))
	} else {
		c.io.Printf("Server:       %s not reachable\n", c.mark(false))
	}
	c.io.Printf("Last synced:  %s\n", formatTime(report.LastSyncedAt))
	c.io.Printf("Pending sync: %d item(s)\n", report.PendingCount)

	if report.PendingCount > 0 {
		c.io.Println()
		c.io.Println("Run 'tasksync sync' to synchronize with server.")
	}
	return nil
}
