package app

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"

	"kiosk-go/internal/kiosk"
)

// ConsolePresenter shows kiosk output as text lines. It keeps the latest
// camera frame so an operator can save a snapshot of the live preview.
// Methods are called from the event loop only.
type ConsolePresenter struct {
	w io.Writer

	latest             kiosk.Frame
	hasFrame           bool
	registrationFrames int

	// OnMessage, if set, is called after every popup.
	OnMessage func(title, text string)
}

// NewConsolePresenter creates a presenter writing to w.
func NewConsolePresenter(w io.Writer) *ConsolePresenter {
	return &ConsolePresenter{w: w}
}

func (p *ConsolePresenter) ShowFrame(frame kiosk.Frame) {
	p.latest = frame
	p.hasFrame = true
}

func (p *ConsolePresenter) ShowRegistrationFrame(kiosk.Frame) {
	p.registrationFrames++
}

func (p *ConsolePresenter) ShowCountdown(text string) {
	if text == "" {
		return
	}
	fmt.Fprintln(p.w, text)
}

func (p *ConsolePresenter) ShowMessage(title, text string) {
	fmt.Fprintf(p.w, "[%s] %s\n", title, text)
	if p.OnMessage != nil {
		p.OnMessage(title, text)
	}
}

func (p *ConsolePresenter) RegistrationClosed() {
	fmt.Fprintf(p.w, "registration closed (%d frames recorded)\n", p.registrationFrames)
	p.registrationFrames = 0
}

// Snapshot writes the latest camera frame to path. The image format follows
// the file extension.
func (p *ConsolePresenter) Snapshot(path string) error {
	if !p.hasFrame || p.latest.Image == nil {
		return fmt.Errorf("no camera frame yet")
	}
	if err := imaging.Save(p.latest.Image, path); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Compile-time check that ConsolePresenter implements kiosk.Presenter interface
var _ kiosk.Presenter = (*ConsolePresenter)(nil)
