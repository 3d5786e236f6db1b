package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hay-kot/recall/pkg/executil"
)

// Result is the outcome of evaluating one command.
type Result struct {
	Command  string
	Output   string
	ExitCode int
}

// Failed returns true if the command exited with a non-zero exit code.
func (r Result) Failed() bool {
	return r.ExitCode != 0
}

// Evaluator runs a submitted command.
type Evaluator interface {
	// Eval runs command. A command that runs and exits non-zero is not an
	// error; the exit code is in the Result.
	Eval(ctx context.Context, command string) (Result, error)
}

// ShellEvaluator runs commands with `<shell> -c <command>`. It handles cd
// itself so the working directory persists between commands.
type ShellEvaluator struct {
	exec  executil.Executor
	shell string

	mu  sync.Mutex
	dir string
}

// NewShellEvaluator creates a ShellEvaluator running commands in dir. An
// empty dir means the process working directory.
func NewShellEvaluator(exec executil.Executor, shell, dir string) *ShellEvaluator {
	return &ShellEvaluator{exec: exec, shell: shell, dir: dir}
}

// Dir returns the directory commands run in.
func (e *ShellEvaluator) Dir() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dir
}

// Eval runs command through the shell.
func (e *ShellEvaluator) Eval(ctx context.Context, command string) (Result, error) {
	if target, ok := parseCd(command); ok {
		return e.chdir(command, target)
	}

	out, err := e.exec.RunDir(ctx, e.Dir(), e.shell, "-c", command)
	res := Result{
		Command:  command,
		Output:   string(out),
		ExitCode: executil.ExitCode(err),
	}
	if err != nil && res.ExitCode < 0 {
		return res, fmt.Errorf("run command: %w", err)
	}

	return res, nil
}

func (e *ShellEvaluator) chdir(command, target string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if target == "" || target == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Result{Command: command}, fmt.Errorf("cd: %w", err)
		}
		target = home
	} else if rest, ok := strings.CutPrefix(target, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return Result{Command: command}, fmt.Errorf("cd: %w", err)
		}
		target = filepath.Join(home, rest)
	}

	if !filepath.IsAbs(target) {
		base := e.dir
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return Result{Command: command}, fmt.Errorf("cd: %w", err)
			}
			base = wd
		}
		target = filepath.Join(base, target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return Result{Command: command, Output: fmt.Sprintf("cd: %s: no such directory\n", target), ExitCode: 1}, nil
	}
	if !info.IsDir() {
		return Result{Command: command, Output: fmt.Sprintf("cd: %s: not a directory\n", target), ExitCode: 1}, nil
	}

	e.dir = target
	return Result{Command: command}, nil
}

// parseCd recognizes a bare `cd [dir]` command.
func parseCd(command string) (string, bool) {
	fields := strings.Fields(command)
	if len(fields) == 0 || fields[0] != "cd" || len(fields) > 2 {
		return "", false
	}
	if len(fields) == 1 {
		return "", true
	}
	return fields[1], true
}
