package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dubsync/internal/media/ffprobe"
)

const (
	// atempo on clips under a few seconds can land noticeably long.
	// When the overshoot is small the clip is trimmed back to the
	// expected length instead of failing the run.
	driftRatio     = 1.02
	driftMaxExtra  = 0.1
	driftShortClip = 3.0

	speedRetries = 2
	retryDelay   = time.Second
)

// DriftError reports a speed-adjusted clip whose duration landed too far
// from the expected value to be trimmed back safely.
type DriftError struct {
	Input    string
	Speed    float64
	Expected float64
	Actual   float64
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("ffmpeg atempo drift on %s: speed=%.3f expected=%.2fs actual=%.2fs",
		filepath.Base(e.Input), e.Speed, e.Expected, e.Actual)
}

type driftAction int

const (
	driftAccept driftAction = iota
	driftTrim
	driftReject
)

// classifyDrift compares the measured output duration against the value
// atempo should have produced and returns that expected duration with the
// verdict. Overshoots past the ratio envelope get trimmed back when the
// source clip is short and the excess small, otherwise rejected.
func classifyDrift(inputDur, outputDur, speed float64) (driftAction, float64) {
	expected := inputDur / speed
	if outputDur < expected*driftRatio {
		return driftAccept, expected
	}
	if inputDur < driftShortClip && outputDur-expected <= driftMaxExtra {
		return driftTrim, expected
	}
	return driftReject, expected
}

// Client runs ffmpeg for clip speed adjustment and trimming.
type Client struct {
	Binary      string
	ProbeBinary string
}

func (c *Client) binary() string {
	if b := strings.TrimSpace(c.Binary); b != "" {
		return b
	}
	return "ffmpeg"
}

// AdjustSpeed writes input to output at the given playback speed using
// the atempo filter. Factors within 0.001 of 1.0 copy the file
// unchanged. The output duration is verified against input/speed; small
// overshoots on short clips are trimmed away, larger ones return a
// DriftError.
func (c *Client) AdjustSpeed(ctx context.Context, input, output string, speed float64) error {
	if math.Abs(speed-1.0) < 0.001 {
		return copyFile(input, output)
	}

	inputDur, err := ffprobe.Duration(ctx, c.ProbeBinary, input)
	if err != nil {
		return err
	}

	args := []string{"-i", input, "-filter:a", "atempo=" + strconv.FormatFloat(speed, 'f', -1, 64), "-y", output}
	var lastErr error
	for attempt := 0; attempt < speedRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		cmd := exec.CommandContext(ctx, c.binary(), args...)
		out, runErr := cmd.CombinedOutput()
		if runErr != nil {
			lastErr = fmt.Errorf("ffmpeg atempo: %w: %s", runErr, strings.TrimSpace(string(out)))
			continue
		}

		outputDur, probeErr := ffprobe.Duration(ctx, c.ProbeBinary, output)
		if probeErr != nil {
			return probeErr
		}
		action, expected := classifyDrift(inputDur, outputDur, speed)
		switch action {
		case driftTrim:
			return c.Trim(ctx, output, expected)
		case driftReject:
			return &DriftError{Input: input, Speed: speed, Expected: expected, Actual: outputDur}
		}
		return nil
	}
	return lastErr
}

// Trim cuts the clip at path down to duration seconds in place.
func (c *Client) Trim(ctx context.Context, path string, duration float64) error {
	if duration <= 0 {
		return errors.New("ffmpeg trim: non-positive duration")
	}
	tmp := path + ".trim.wav"
	args := []string{"-i", path, "-t", strconv.FormatFloat(duration, 'f', 3, 64), "-y", tmp}
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg trim: %w: %s", err, strings.TrimSpace(string(out)))
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("ffmpeg trim: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy clip: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy clip: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy clip: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copy clip: %w", err)
	}
	return nil
}
