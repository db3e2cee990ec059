package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"kiosk-go/internal/kiosk"
)

// DefaultTimeout bounds a single encode or decode.
const DefaultTimeout = 2 * time.Minute

// FFmpegCodec writes and reads clips with an ffmpeg binary.
type FFmpegCodec struct {
	ffmpegPath string
	format     kiosk.ClipFormat
	timeout    time.Duration
}

// NewFFmpegCodec creates a codec. format sets the geometry decoded frames are scaled to.
func NewFFmpegCodec(ffmpegPath string, format kiosk.ClipFormat) *FFmpegCodec {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegCodec{ffmpegPath: ffmpegPath, format: format, timeout: DefaultTimeout}
}

// Encode pipes every frame, normalised to format, into ffmpeg writing dst.
func (c *FFmpegCodec) Encode(dst string, frames []kiosk.Frame, format kiosk.ClipFormat) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	args := BuildEncodeArgs(c.ffmpegPath, dst, format)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	writeErr := writeFrames(stdin, frames, format)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()

	switch {
	case waitErr != nil:
		return fmt.Errorf("ffmpeg encode failed: %w: %s", waitErr, lastLine(stderrBuf.String()))
	case writeErr != nil:
		return writeErr
	case closeErr != nil:
		return fmt.Errorf("closing ffmpeg stdin: %w", closeErr)
	}
	return nil
}

func writeFrames(w io.Writer, frames []kiosk.Frame, format kiosk.ClipFormat) error {
	for _, frame := range frames {
		img := Normalize(frame.Image, format.Width, format.Height)
		if _, err := w.Write(img.Pix); err != nil {
			return fmt.Errorf("writing frame %d: %w", frame.Seq, err)
		}
	}
	return nil
}

// FirstFrame decodes the first frame of src. ok is false when src holds no video frame.
func (c *FFmpegCodec) FirstFrame(src string) (kiosk.Frame, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	args := BuildFirstFrameArgs(c.ffmpegPath, src, c.format.Width, c.format.Height)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderrBuf bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderrBuf
	if err := cmd.Run(); err != nil {
		return kiosk.Frame{}, false, fmt.Errorf("ffmpeg decode failed: %w: %s", err, lastLine(stderrBuf.String()))
	}
	if stdout.Len() == 0 {
		return kiosk.Frame{}, false, nil
	}

	img, err := FromRGBA(stdout.Bytes(), c.format.Width, c.format.Height)
	if err != nil {
		return kiosk.Frame{}, false, err
	}
	return kiosk.Frame{Seq: 0, Image: img}, true, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
