package scan

import (
	"context"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// Executor runs the built scanner command as a blocking child process.
type Executor struct {
	logger *zerolog.Logger

	// Stdout/Stderr of the child process; defaults to the parent's.
	stdout *os.File
	stderr *os.File
}

func NewExecutor(logger *zerolog.Logger) *Executor {
	return &Executor{
		logger: logger,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Execute runs the command and blocks until the child exits. The exit code
// is not authoritative: scanners exit non-zero when they found findings
// while still writing a valid report. Success is solely the presence of
// the report file at reportPath after the process returns.
func (e *Executor) Execute(ctx context.Context, command *Command, reportPath string) bool {
	args := command.Args()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	e.logger.Debug().Msgf("executing scanner: %v", command.String())

	if err := cmd.Run(); err != nil {
		e.logger.Debug().Msgf("scanner process returned: %v", err)
	}

	if _, err := os.Stat(reportPath); err != nil {
		e.logger.Debug().Msgf("no report file at %v", reportPath)
		return false
	}
	return true
}
