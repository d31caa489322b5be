package build

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"syscall"
)

// runShellCommand executes a command via sh -c in the given directory
// with stdout and stderr written to output (typically a MultiWriter
// over os.Stdout and the compressed build log). Additional environment
// variables from env are appended to the inherited environment.
// Returns the exit code and any error (signals, context cancellation).
//
// The shell is resolved via PATH, not hardcoded to /bin/sh, which is
// also correct on hosts where /bin/sh is a different shell than the
// environment's.
//
// The command runs in its own process group so that context
// cancellation kills the shell and all its children. A setup.py build
// fans out into ninja and dozens of nvcc processes; without Setpgid,
// only the shell receives the kill — the compilers survive and hold
// open the inherited output file descriptors, blocking the parent from
// exiting until they finish.
func runShellCommand(ctx context.Context, command, dir string, env []string, output io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Stdout = output
	cmd.Stderr = output

	// Put the command in its own process group so that the kill
	// reaches the shell and all its children (negative PID = all
	// processes in the group).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return exitError.ExitCode(), nil
	}

	// Non-exit errors: context cancellation (timeout), signal, etc.
	return -1, err
}
