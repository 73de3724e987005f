package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/tasksync/internal/models"
)

func (c *Cli) newAddCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdd(cmd.Context(), args[0], description)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")

	return cmd
}

func (c *Cli) runAdd(ctx context.Context, title, description string) error {
	task, err := c.tasks.Create(ctx, title, description)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(task)
	}
	c.io.Printf("%s Task added: %s\n", c.mark(true), task.ID)
	c.io.Println("Run 'tasksync sync' to push it to the server.")
	return nil
}

func (c *Cli) newUpdateCommand() *cobra.Command {
	var (
		title       string
		description string
		completed   bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update title, description or completion of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Только явно переданные флаги попадают в патч
			var patch models.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("completed") {
				patch.Completed = &completed
			}
			return c.runUpdate(cmd.Context(), args[0], patch)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark as completed (--completed=false to reopen)")

	return cmd
}

func (c *Cli) newDoneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			done := true
			return c.runUpdate(cmd.Context(), args[0], models.TaskPatch{Completed: &done})
		},
	}
}

func (c *Cli) runUpdate(ctx context.Context, id string, patch models.TaskPatch) error {
	task, err := c.tasks.Update(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(task)
	}
	c.io.Printf("%s Task updated: %s\n", c.mark(true), task.ID)
	return nil
}

func (c *Cli) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task (soft delete, synchronized as delete)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDelete(cmd.Context(), args[0])
		},
	}
}

func (c *Cli) runDelete(ctx context.Context, id string) error {
	if err := c.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(map[string]string{"id": id, "status": "deleted"})
	}
	c.io.Printf("%s Task deleted: %s\n", c.mark(true), id)
	return nil
}

func (c *Cli) newListCommand() *cobra.Command {
	var pending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.Context(), pending)
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "only tasks waiting for sync or failed to sync (deleted included)")

	return cmd
}

func (c *Cli) runList(ctx context.Context, pending bool) error {
	var (
		list []*models.Task
		err  error
	)
	if pending {
		list, err = c.tasks.ListNeedingSync(ctx)
	} else {
		list, err = c.tasks.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(list)
	}

	if len(list) == 0 {
		c.io.Println("No tasks found.")
		c.io.Println()
		c.io.Println("Use 'tasksync add <title>' to add your first task.")
		return nil
	}

	c.io.Printf("Found %d task(s):\n", len(list))
	c.io.Println()
	for i, task := range list {
		c.printTaskLine(i+1, task)
		c.io.Println()
	}
	return nil
}

func (c *Cli) newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show full task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGet(cmd.Context(), args[0])
		},
	}
}

func (c *Cli) runGet(ctx context.Context, id string) error {
	task, err := c.tasks.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(task)
	}
	return c.printTask(task)
}
