package cli

import "github.com/spf13/cobra"

func (c *Cli) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.jsonOutput() {
				return c.printJSON(c.build)
			}
			c.io.Println("tasksync client")
			c.io.Printf("Version:    %s\n", c.build.Version)
			c.io.Printf("Build Date: %s\n", c.build.BuildDate)
			c.io.Printf("Git Commit: %s\n", c.build.GitCommit)
			return nil
		},
	}
}
