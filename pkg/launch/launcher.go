// Package launch starts external programs (editor, browser) on project paths.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"
)

// DefaultEditor is used when no editor command is configured.
const DefaultEditor = "code"

var ErrEmptyCommand = errors.New("empty command")

// Launcher starts an external program. Implementations must not wait for the
// program to exit.
type Launcher interface {
	Launch(ctx context.Context, command string, args ...string) error
}

// ExecLauncher starts programs with os/exec.
type ExecLauncher struct{}

func (ExecLauncher) Launch(ctx context.Context, command string, args ...string) error {
	if command == "" {
		return ErrEmptyCommand
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// Not CommandContext: the program must outlive the request that opened it.
	cmd := exec.Command(command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", command, err)
	}
	go cmd.Wait()
	return nil
}

// EditorCommand splits a configured editor command line (for example
// `code -n` or `"/Applications/My Editor.app/bin/edit" --wait`) and appends
// path as the final argument.
func EditorCommand(configured, path string) (string, []string, error) {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		configured = DefaultEditor
	}
	words, err := shellquote.Split(configured)
	if err != nil {
		return "", nil, fmt.Errorf("invalid editor command %q: %w", configured, err)
	}
	if len(words) == 0 {
		return "", nil, ErrEmptyCommand
	}
	args := append(words[1:], path)
	return words[0], args, nil
}

// BrowserCommand returns the platform program that opens file in the default
// browser.
func BrowserCommand(goos, file string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{file}
	case "windows":
		return "cmd", []string{"/c", "start", "", file}
	default:
		return "xdg-open", []string{file}
	}
}

// OpenEditor launches the configured editor on path.
func OpenEditor(ctx context.Context, l Launcher, editor, path string) error {
	command, args, err := EditorCommand(editor, path)
	if err != nil {
		return err
	}
	return l.Launch(ctx, command, args...)
}

// OpenBrowser opens file in the default browser of the running platform.
func OpenBrowser(ctx context.Context, l Launcher, file string) error {
	command, args := BrowserCommand(runtime.GOOS, file)
	return l.Launch(ctx, command, args...)
}
