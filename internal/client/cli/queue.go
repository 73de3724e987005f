package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *Cli) newQueueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show pending sync queue in processing order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQueue(cmd.Context())
		},
	}
}

func (c *Cli) runQueue(ctx context.Context) error {
	items, err := c.sync.Pending(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sync queue: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(items)
	}

	if len(items) == 0 {
		c.io.Println("Sync queue is empty.")
		return nil
	}

	c.io.Printf("%d item(s) waiting for sync:\n", len(items))
	c.io.Println()
	for i, item := range items {
		c.io.Printf("%d. %-6s task %s\n", i+1, item.Operation, item.TaskID)
		c.io.Printf("   Queued:  %s\n", formatTime(item.CreatedAt))
		if item.RetryCount > 0 {
			c.io.Printf("   Retries: %d (%s: %s)\n", item.RetryCount, item.ErrorReason, item.ErrorMessage)
		}
	}
	return nil
}

func (c *Cli) newRequeueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <task-id>",
		Short: "Queue a task that permanently failed to sync once more",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRequeue(cmd.Context(), args[0])
		},
	}
}

func (c *Cli) runRequeue(ctx context.Context, taskID string) error {
	item, err := c.sync.Requeue(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to requeue task: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(item)
	}
	c.io.Printf("%s Task %s queued for %s\n", c.mark(true), taskID, item.Operation)
	return nil
}

func (c *Cli) newDiscardCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "discard <task-id>",
		Short: "Drop all queued changes of a task without sending them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiscard(cmd.Context(), args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func (c *Cli) runDiscard(ctx context.Context, taskID string, yes bool) error {
	if !yes {
		answer, err := c.io.ReadInput(fmt.Sprintf("Discard queued changes of %s? [y/N]: ", taskID))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			c.io.Println("Cancelled.")
			return nil
		}
	}

	if err := c.sync.Discard(ctx, taskID); err != nil {
		return fmt.Errorf("failed to discard queued changes: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(map[string]string{"task_id": taskID, "status": "discarded"})
	}
	c.io.Printf("%s Queued changes of %s discarded\n", c.mark(true), taskID)
	return nil
}
