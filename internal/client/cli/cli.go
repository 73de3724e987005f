package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/iudanet/tasksync/internal/client/iocli"
	syncsvc "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/client/tasks"
)

// RootOptions holds global flags for all commands.
// Empty values mean "take from config".
type RootOptions struct {
	ConfigPath string
	ServerURL  string
	DBPath     string
	LogLevel   string
	Format     string // "text" | "json"
	BatchSize  int
	MaxRetries int // -1 = из конфигурации
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// App набор сервисов, с которыми работают команды
type App struct {
	Tasks tasks.Service
	Sync  syncsvc.Service
	Close func() error
}

// AppFactory создает сервисы по глобальным флагам. Вызывается один раз перед командой.
type AppFactory func(ctx context.Context, opts *RootOptions) (*App, error)

// BuildInfo информация о сборке для команды version
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

type Cli struct {
	io      iocli.IO
	tasks   tasks.Service
	sync    syncsvc.Service
	factory AppFactory
	opts    *RootOptions
	closer  func() error
	build   BuildInfo
}

// New создает CLI. Сервисы создаются фабрикой лениво, перед выполнением команды.
func New(factory AppFactory, build BuildInfo) *Cli {
	return &Cli{
		factory: factory,
		build:   build,
		opts:    &RootOptions{Format: "text", MaxRetries: -1},
	}
}

// Close освобождает ресурсы, созданные фабрикой
func (c *Cli) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer()
	c.closer = nil
	return err
}

// annotationNoApp помечает команды, которым не нужны хранилище и сервер
const annotationNoApp = "tasksync/no-app"

// Command creates the root command for the tasksync CLI.
func (c *Cli) Command() *cobra.Command {
	opts := c.opts

	cmd := &cobra.Command{
		Use:   "tasksync",
		Short: "Offline-first task list with background synchronization",
		Long: `tasksync keeps a local task list that works without network access.

Every change is recorded in a local sync queue. The sync command replays
the queue against the server in batches and resolves conflicts by
last-write-wins.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if c.io == nil {
				c.io = iocli.NewStream(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			if cmd.Annotations[annotationNoApp] == "true" {
				return nil
			}
			return c.init(cmd.Context())
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	flags.StringVar(&opts.ServerURL, "server", "", "server API base URL (env API_BASE_URL)")
	flags.StringVar(&opts.DBPath, "db", "", "path to local database (env TASKSYNC_DB)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level: debug|info|warn|error (env LOG_LEVEL)")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.IntVar(&opts.BatchSize, "batch-size", 0, "items per sync request (env SYNC_BATCH_SIZE)")
	flags.IntVar(&opts.MaxRetries, "max-retries", -1, "retries before an item fails permanently (env SYNC_MAX_RETRIES)")

	// Add subcommands
	cmd.AddCommand(c.newAddCommand())
	cmd.AddCommand(c.newUpdateCommand())
	cmd.AddCommand(c.newDoneCommand())
	cmd.AddCommand(c.newDeleteCommand())
	cmd.AddCommand(c.newListCommand())
	cmd.AddCommand(c.newGetCommand())
	cmd.AddCommand(c.newSyncCommand())
	cmd.AddCommand(c.newStatusCommand())
	cmd.AddCommand(c.newQueueCommand())
	cmd.AddCommand(c.newRequeueCommand())
	cmd.AddCommand(c.newDiscardCommand())
	cmd.AddCommand(c.newVersionCommand())

	return cmd
}

// init создает сервисы, если они ещё не заданы
func (c *Cli) init(ctx context.Context) error {
	if c.tasks != nil && c.sync != nil {
		return nil
	}
	if c.factory == nil {
		return errors.New("cli is not configured")
	}

	app, err := c.factory(ctx, c.opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize", err)
	}
	c.tasks = app.Tasks
	c.sync = app.Sync
	c.closer = app.Close
	return nil
}
