package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	syncsvc "github.com/iudanet/tasksync/internal/client/sync"
)

func (c *Cli) newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize queued changes with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd.Context())
		},
	}
}

func (c *Cli) runSync(ctx context.Context) error {
	// Проверяем доступность сервера до начала прохода
	if !c.sync.CheckConnectivity(ctx) {
		return NewExitError(ExitUnavailable, "server not reachable, please try again later")
	}

	result, err := c.sync.Sync(ctx)
	if err != nil {
		if errors.Is(err, syncsvc.ErrSyncInProgress) {
			return WrapExitError(ExitFailure, "synchronization is already running", err)
		}
		return fmt.Errorf("synchronization failed: %w", err)
	}

	if c.jsonOutput() {
		if err := c.printJSON(result); err != nil {
			return err
		}
	} else {
		c.io.Println("=== Synchronization ===")
		c.io.Println()
		c.io.Printf("Synced:  %d item(s)\n", result.SyncedItems)
		c.io.Printf("Failed:  %d item(s)\n", result.FailedItems)
		if result.SkippedItems > 0 {
			c.io.Printf("Skipped: %d item(s)\n", result.SkippedItems)
		}
		c.io.Printf("Batches: %d\n", result.Batches)

		if len(result.Errors) > 0 {
			c.io.Println()
			c.io.Println("Errors:")
			for _, e := range result.Errors {
				c.io.Printf("  %s %s %s (%s): %s\n", c.mark(false), e.Operation, e.TaskID, e.Reason, e.Error)
			}
		}

		c.io.Println()
		if result.Success {
			c.io.Printf("%s Synchronization completed\n", c.mark(true))
		}
	}

	if !result.Success {
		return NewExitError(ExitFailure, "synchronization finished with errors")
	}
	return nil
}
