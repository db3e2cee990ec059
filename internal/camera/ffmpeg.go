package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"kiosk-go/internal/kiosk"
	"kiosk-go/internal/video"
)

// FFmpegCamera streams a capture device through ffmpeg as raw RGBA frames.
// A reader goroutine keeps only the newest frame; ReadFrame never blocks.
type FFmpegCamera struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	width  int
	height int

	mu       sync.Mutex
	latest   kiosk.Frame
	seq      uint64
	consumed uint64
	err      error
	reported bool
	done     chan struct{}
	stderr   bytes.Buffer
}

// OpenFFmpeg starts capturing device. inputFormat is the ffmpeg demuxer for the
// platform (v4l2, avfoundation, dshow).
func OpenFFmpeg(ffmpegPath, inputFormat, device string, width, height int) (*FFmpegCamera, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ctx, cancel := context.WithCancel(context.Background())

	args := video.BuildCaptureArgs(ffmpegPath, inputFormat, device, width, height)
	c := &FFmpegCamera{
		cmd:    exec.CommandContext(ctx, args[0], args[1:]...),
		cancel: cancel,
		width:  width,
		height: height,
		done:   make(chan struct{}),
	}
	c.cmd.Stderr = &lockedWriter{mu: &c.mu, w: &c.stderr}

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("opening ffmpeg stdout: %w", err)
	}
	if err := c.cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting ffmpeg capture of %s: %w", device, err)
	}

	go c.readLoop(stdout)
	return c, nil
}

func (c *FFmpegCamera) readLoop(r io.Reader) {
	defer close(c.done)
	size := c.width * c.height * 4
	for {
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			c.mu.Lock()
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = fmt.Errorf("camera stream ended: %s", c.stderr.String())
			}
			c.err = err
			c.mu.Unlock()
			return
		}
		img, err := video.FromRGBA(buf, c.width, c.height)
		if err != nil {
			continue
		}

		c.mu.Lock()
		c.seq++
		c.latest = kiosk.Frame{Seq: c.seq, Image: img}
		c.mu.Unlock()
	}
}

// ReadFrame returns the newest frame not yet returned. ok is false when the
// device has produced nothing new since the last call. A stream failure is
// reported once.
func (c *FFmpegCamera) ReadFrame() (kiosk.Frame, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq > c.consumed {
		c.consumed = c.seq
		return c.latest, true, nil
	}
	if c.err != nil && !c.reported {
		c.reported = true
		return kiosk.Frame{}, false, c.err
	}
	return kiosk.Frame{}, false, nil
}

// Close stops ffmpeg and waits for the reader to exit.
func (c *FFmpegCamera) Close() error {
	c.cancel()
	<-c.done
	if err := c.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stopping ffmpeg capture: %w", err)
		}
	}
	return nil
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// Compile-time check that FFmpegCamera implements kiosk.Camera interface
var _ kiosk.Camera = (*FFmpegCamera)(nil)
