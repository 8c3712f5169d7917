package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Engine turns a line of text into a wav clip at the given path.
type Engine interface {
	Synthesize(ctx context.Context, text, output string) error
}

const retryDelay = time.Second

// CommandEngine shells out to a configured synthesis command. The
// command is an argv template where {{text}} and {{output}} are
// substituted per call.
type CommandEngine struct {
	Name    string
	Command []string
	Retries int
}

// Synthesize runs the command template, retrying transient failures. A
// run that exits cleanly but leaves no clip behind counts as a failure.
func (e *CommandEngine) Synthesize(ctx context.Context, text, output string) error {
	if len(e.Command) == 0 {
		return errors.New("synth: empty command template")
	}
	args := expandArgs(e.Command, text, output)

	attempts := e.Retries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			lastErr = fmt.Errorf("synth %s: %w: %s", e.Name, err, strings.TrimSpace(string(out)))
			continue
		}
		info, err := os.Stat(output)
		if err != nil || info.Size() == 0 {
			lastErr = fmt.Errorf("synth %s: no output clip at %s", e.Name, output)
			continue
		}
		return nil
	}
	return lastErr
}

func expandArgs(template []string, text, output string) []string {
	args := make([]string, len(template))
	for i, arg := range template {
		arg = strings.ReplaceAll(arg, "{{text}}", text)
		arg = strings.ReplaceAll(arg, "{{output}}", output)
		args[i] = arg
	}
	return args
}
