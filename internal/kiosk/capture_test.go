package kiosk_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"kiosk-go/internal/kiosk"
	"kiosk-go/internal/testutil"
)

func newTestSession(clock *testutil.StubClock) *kiosk.CaptureSession {
	return kiosk.NewCaptureSession(testutil.NewFakeFaceEngine(), clock, kiosk.NewNopLogger(), 3*time.Second)
}

func TestCaptureSession_Start(t *testing.T) {
	t.Run("second start is rejected", func(t *testing.T) {
		s := newTestSession(testutil.FixedClock())
		if err := s.Start("id-1", kiosk.ModeLogin); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if err := s.Start("id-2", kiosk.ModeEnroll); !errors.Is(err, kiosk.ErrSessionActive) {
			t.Errorf("Start() error = %v, want ErrSessionActive", err)
		}
		if s.ID() != "id-1" || s.Mode() != kiosk.ModeLogin {
			t.Errorf("session = %s/%v, want id-1/%v", s.ID(), s.Mode(), kiosk.ModeLogin)
		}
	})

	t.Run("restart clears previous frames", func(t *testing.T) {
		s := newTestSession(testutil.FixedClock())
		s.Start("id-1", kiosk.ModeLogin)
		s.OnFrame(testutil.Blank(1))
		s.Stop()

		s.Start("id-2", kiosk.ModeLogin)
		if n := len(s.Frames()); n != 0 {
			t.Errorf("len(Frames()) = %d after restart, want 0", n)
		}
	})
}

func TestCaptureSession_OnFrame(t *testing.T) {
	s := newTestSession(testutil.FixedClock())

	if s.OnFrame(testutil.Blank(1)) {
		t.Error("OnFrame() = true while idle, want false")
	}

	s.Start("id-1", kiosk.ModeEnroll)
	for seq := uint64(2); seq <= 4; seq++ {
		if !s.OnFrame(testutil.Blank(seq)) {
			t.Errorf("OnFrame(%d) = false while active", seq)
		}
	}
	s.Stop()
	if s.OnFrame(testutil.Blank(5)) {
		t.Error("OnFrame() = true after Stop, want false")
	}

	frames := s.Frames()
	if len(frames) != 3 {
		t.Fatalf("len(Frames()) = %d, want 3", len(frames))
	}
	for i, f := range frames {
		if f.Seq != uint64(i+2) {
			t.Errorf("frames[%d].Seq = %d, want %d", i, f.Seq, i+2)
		}
	}
	latest, ok := s.Latest()
	if !ok || latest.Seq != 4 {
		t.Errorf("Latest() = %d, %v, want 4, true", latest.Seq, ok)
	}
}

func TestCaptureSession_ShouldTerminate(t *testing.T) {
	ctx := context.Background()

	t.Run("enroll ends after duration", func(t *testing.T) {
		clock := testutil.FixedClock()
		s := newTestSession(clock)
		s.Start("id-1", kiosk.ModeEnroll)
		s.OnFrame(testutil.Face(1, "ALICE"))

		clock.Advance(2999 * time.Millisecond)
		if s.ShouldTerminate(ctx) {
			t.Error("ShouldTerminate() = true before duration")
		}
		clock.Advance(time.Millisecond)
		if !s.ShouldTerminate(ctx) {
			t.Error("ShouldTerminate() = false at duration")
		}
	})

	t.Run("login ends on first face", func(t *testing.T) {
		s := newTestSession(testutil.FixedClock())
		s.Start("id-1", kiosk.ModeLogin)

		if s.ShouldTerminate(ctx) {
			t.Error("ShouldTerminate() = true with no frames")
		}
		s.OnFrame(testutil.Blank(1))
		if s.ShouldTerminate(ctx) {
			t.Error("ShouldTerminate() = true for blank frame")
		}
		s.OnFrame(testutil.Face(2, "ALICE"))
		if !s.ShouldTerminate(ctx) {
			t.Error("ShouldTerminate() = false for face frame")
		}
	})

	t.Run("detector failure counts as no face", func(t *testing.T) {
		faces := testutil.NewFakeFaceEngine()
		faces.DetectErr = errors.New("service down")
		s := kiosk.NewCaptureSession(faces, testutil.FixedClock(), kiosk.NewNopLogger(), time.Second)
		s.Start("id-1", kiosk.ModeLogin)
		s.OnFrame(testutil.Face(1, "ALICE"))

		if s.ShouldTerminate(ctx) {
			t.Error("ShouldTerminate() = true when detector fails")
		}
	})

	t.Run("idle session never terminates", func(t *testing.T) {
		s := newTestSession(testutil.FixedClock())
		if s.ShouldTerminate(ctx) {
			t.Error("ShouldTerminate() = true while idle")
		}
	})
}

func TestCaptureSession_Discard(t *testing.T) {
	s := newTestSession(testutil.FixedClock())
	s.Start("id-1", kiosk.ModeEnroll)
	s.OnFrame(testutil.Face(1, "ALICE"))
	s.Discard()

	if s.Active() {
		t.Error("Active() = true after Discard")
	}
	if len(s.Frames()) != 0 {
		t.Errorf("len(Frames()) = %d after Discard, want 0", len(s.Frames()))
	}
}
