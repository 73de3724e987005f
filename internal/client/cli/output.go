package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/iudanet/tasksync/internal/models"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Sync finished with failures, invalid input
	ExitCommandError = 2 // Command error (config, database)
	ExitUnavailable  = 3 // Server is not reachable
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Err     error  // Underlying error (optional)
	Message string // Error message
	Code    int    // Exit code
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

const taskTemplate = `
=== Task Details ===

Title:       {{.Title}}
ID:          {{.ID}}
{{- if .Description }}
Description: {{.Description}}
{{- end}}
Completed:   {{ if .Completed }}yes{{ else }}no{{ end }}
Created:     {{ ts .CreatedAt }}
Updated:     {{ ts .UpdatedAt }}
Sync status: {{.SyncStatus}}
{{- if .ServerID }}
Server ID:   {{.ServerID}}
{{- end}}
{{- if .LastSyncedAt }}
Last synced: {{ ts .LastSyncedAt }}
{{- end}}
`

var templates = template.Must(template.New("task").Funcs(template.FuncMap{
	"ts": formatTime,
}).Parse(taskTemplate))

func formatTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Local().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return "never"
		}
		return t.Local().Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// printJSON выводит значение как JSON с отступами
func (c *Cli) printJSON(v any) error {
	enc := json.NewEncoder(c.io)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func (c *Cli) jsonOutput() bool {
	return c.opts.Format == "json"
}

// mark возвращает символ статуса; в не-терминальный вывод пишем ASCII
func (c *Cli) mark(ok bool) string {
	if c.io.IsTerminal() {
		if ok {
			return "✓"
		}
		return "✗"
	}
	if ok {
		return "[ok]"
	}
	return "[!]"
}

func (c *Cli) printTaskLine(i int, task *models.Task) {
	check := " "
	if task.Completed {
		check = "x"
	}
	c.io.Printf("%d. [%s] %s\n", i, check, task.Title)
	c.io.Printf("   ID:     %s\n", task.ID)
	c.io.Printf("   Status: %s\n", task.SyncStatus)
}

func (c *Cli) printTask(task *models.Task) error {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, "task", task); err != nil {
		return fmt.Errorf("failed to render task: %w", err)
	}
	c.io.Printf("%s", sb.String())
	return nil
}
