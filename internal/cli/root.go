// Package cli is the command-line entry point of the shell.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"pulselogic/internal/bootstrap"
	"pulselogic/internal/buildinfo"
	"pulselogic/internal/domain"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a failed run or command.
	ExitCodeError = 1
)

// ExitError carries a process exit code for failures already reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// launcher builds and runs the desktop shell.
type launcher func(assets fs.FS, stderr io.Writer) (domain.Outcome, error)

var launch launcher = func(assets fs.FS, stderr io.Writer) (domain.Outcome, error) {
	app, err := bootstrap.NewWithAssets(assets, stderr)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("bootstrap app: %w", err)
	}
	return app.Run(), nil
}

// NewRootCmd creates the root command; running it without a subcommand starts the shell.
func NewRootCmd(assets fs.FS) *cobra.Command {
	root := &cobra.Command{
		Use:   "pulselogic",
		Short: "Run the PulseLogic desktop shell",
		Long: `pulselogic starts the desktop shell: it registers the host capabilities,
loads the web frontend and records lifecycle events to the diagnostic log.`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := launch(assets, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if code := outcome.ExitCode(); code != ExitCodeSuccess {
				var cause error
				if outcome.Err != nil {
					cause = outcome.Err
				}
				return &ExitError{Code: code, Err: cause}
			}
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "pulselogic version %s\n" .Version}}`)

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCheckUpdateCmd())
	return root
}

// Execute runs the CLI and exits the process with the resulting code.
func Execute(assets fs.FS) {
	os.Exit(run(NewRootCmd(assets), os.Stderr))
}

func run(root *cobra.Command, stderr io.Writer) int {
	err := root.Execute()
	if err == nil {
		return ExitCodeSuccess
	}
	return exitCode(err, stderr)
}

// exitCode maps err to a status, printing it unless the run already reported it.
func exitCode(err error, stderr io.Writer) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	_, _ = fmt.Fprintf(stderr, "pulselogic: %v\n", err)
	return ExitCodeError
}
