package testutil

import (
	"kiosk-go/internal/kiosk"
)

// Message is a popup shown by the kiosk.
type Message struct {
	Title string
	Text  string
}

// RecordingPresenter captures everything the kiosk shows.
type RecordingPresenter struct {
	Frames             int
	RegistrationFrames []kiosk.Frame
	Countdowns         []string
	Messages           []Message
	Closed             int
}

func NewRecordingPresenter() *RecordingPresenter {
	return &RecordingPresenter{}
}

func (p *RecordingPresenter) ShowFrame(kiosk.Frame) { p.Frames++ }

func (p *RecordingPresenter) ShowRegistrationFrame(f kiosk.Frame) {
	p.RegistrationFrames = append(p.RegistrationFrames, f)
}

func (p *RecordingPresenter) ShowCountdown(text string) {
	p.Countdowns = append(p.Countdowns, text)
}

func (p *RecordingPresenter) ShowMessage(title, text string) {
	p.Messages = append(p.Messages, Message{Title: title, Text: text})
}

func (p *RecordingPresenter) RegistrationClosed() { p.Closed++ }

// LastMessage returns the most recent popup, or the zero Message.
func (p *RecordingPresenter) LastMessage() Message {
	if len(p.Messages) == 0 {
		return Message{}
	}
	return p.Messages[len(p.Messages)-1]
}

// Compile-time check that RecordingPresenter implements kiosk.Presenter interface
var _ kiosk.Presenter = (*RecordingPresenter)(nil)
