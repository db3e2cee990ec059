package kiosk_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kiosk-go/internal/archive"
	"kiosk-go/internal/kiosk"
	"kiosk-go/internal/testutil"
)

func newTestArchive() (*kiosk.Archive, *archive.MemoryClipStore) {
	store := archive.NewMemoryClipStore()
	return kiosk.NewArchive(store, testutil.NewFakeFaceEngine(), kiosk.DefaultClipFormat, kiosk.NewNopLogger()), store
}

func TestArchive_SaveEnrollmentClip(t *testing.T) {
	ctx := context.Background()

	t.Run("no frames", func(t *testing.T) {
		a, _ := newTestArchive()
		if _, err := a.SaveEnrollmentClip(ctx, "ALICE", nil); !errors.Is(err, kiosk.ErrNoFrameCaptured) {
			t.Errorf("SaveEnrollmentClip() error = %v, want ErrNoFrameCaptured", err)
		}
	})

	t.Run("no face", func(t *testing.T) {
		a, store := newTestArchive()
		frames := []kiosk.Frame{testutil.Blank(1), testutil.Blank(2)}
		if _, err := a.SaveEnrollmentClip(ctx, "ALICE", frames); !errors.Is(err, kiosk.ErrNoFaceDetected) {
			t.Errorf("SaveEnrollmentClip() error = %v, want ErrNoFaceDetected", err)
		}
		if store.Writes("ALICE.mp4") != 0 {
			t.Error("clip written despite missing face")
		}
	})

	t.Run("saves all frames and replaces", func(t *testing.T) {
		a, store := newTestArchive()
		first := []kiosk.Frame{testutil.Blank(1), testutil.Face(2, "ALICE")}
		path, err := a.SaveEnrollmentClip(ctx, "ALICE", first)
		if err != nil {
			t.Fatalf("SaveEnrollmentClip() error = %v", err)
		}
		if path != "ALICE.mp4" {
			t.Errorf("SaveEnrollmentClip() = %q, want %q", path, "ALICE.mp4")
		}

		second := []kiosk.Frame{testutil.Face(3, "ALICE")}
		if _, err := a.SaveEnrollmentClip(ctx, "ALICE", second); err != nil {
			t.Fatalf("SaveEnrollmentClip() error = %v", err)
		}
		frames, _ := store.Frames("ALICE.mp4")
		if len(frames) != 1 || frames[0].Seq != 3 {
			t.Errorf("stored frames = %v, want the replacement clip", frames)
		}
		if store.Writes("ALICE.mp4") != 2 {
			t.Errorf("Writes() = %d, want 2", store.Writes("ALICE.mp4"))
		}
	})
}

func TestArchive_Enrollments(t *testing.T) {
	a, store := newTestArchive()
	ctx := context.Background()
	for _, name := range []string{"CAROL", "ALICE", "BOB"} {
		if _, err := a.SaveEnrollmentClip(ctx, name, []kiosk.Frame{testutil.Face(1, name)}); err != nil {
			t.Fatalf("SaveEnrollmentClip(%s) error = %v", name, err)
		}
	}
	// Event clips live in subdirectories and are not enrollments.
	a.SaveEventClip("ALICE", kiosk.InTime, []kiosk.Frame{testutil.Face(1, "ALICE")}, at(15, 9, 0))
	store.WriteClip("notes.txt", []kiosk.Frame{testutil.Blank(1)}, kiosk.DefaultClipFormat)

	records, err := a.Enrollments()
	if err != nil {
		t.Fatalf("Enrollments() error = %v", err)
	}
	want := []string{"ALICE", "BOB", "CAROL"}
	if len(records) != len(want) {
		t.Fatalf("Enrollments() = %v, want %v", records, want)
	}
	for i, rec := range records {
		if rec.Username != want[i] || rec.VideoPath != want[i]+".mp4" {
			t.Errorf("records[%d] = %+v, want %s", i, rec, want[i])
		}
	}
}

func TestArchive_SaveEventClip(t *testing.T) {
	frames := []kiosk.Frame{testutil.Face(1, "ALICE")}
	dir := filepath.Join("ALICE", "2024", "January")

	t.Run("writes into user month directory", func(t *testing.T) {
		a, store := newTestArchive()
		path, err := a.SaveEventClip("ALICE", kiosk.InTime, frames, at(15, 9, 0))
		if err != nil {
			t.Fatalf("SaveEventClip() error = %v", err)
		}
		want := filepath.Join(dir, "ALICE, 15 Jan 2024, IN TIME, 09.00 AM.mp4")
		if path != want {
			t.Errorf("SaveEventClip() = %q, want %q", path, want)
		}
		if _, ok := store.Frames(want); !ok {
			t.Error("clip not stored")
		}
	})

	t.Run("out replaces previous out of the day", func(t *testing.T) {
		a, store := newTestArchive()
		a.SaveEventClip("ALICE", kiosk.InTime, frames, at(15, 9, 0))
		a.SaveEventClip("ALICE", kiosk.OutTime, frames, at(15, 12, 0))
		a.SaveEventClip("ALICE", kiosk.OutTime, frames, at(15, 17, 30))
		a.SaveEventClip("ALICE", kiosk.OutTime, frames, at(16, 17, 0))

		names, err := store.List(dir)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []string{
			"ALICE, 15 Jan 2024, IN TIME, 09.00 AM.mp4",
			"ALICE, 15 Jan 2024, OUT TIME, 05.30 PM.mp4",
			"ALICE, 16 Jan 2024, OUT TIME, 05.00 PM.mp4",
		}
		if len(names) != len(want) {
			t.Fatalf("List() = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
			}
		}
	})

	t.Run("no frames", func(t *testing.T) {
		a, _ := newTestArchive()
		if _, err := a.SaveEventClip("ALICE", kiosk.InTime, nil, at(15, 9, 0)); !errors.Is(err, kiosk.ErrNoFrameCaptured) {
			t.Errorf("SaveEventClip() error = %v, want ErrNoFrameCaptured", err)
		}
	})
}

func TestArchive_HasEventClip(t *testing.T) {
	a, _ := newTestArchive()
	a.SaveEventClip("ALICE", kiosk.InTime, []kiosk.Frame{testutil.Face(1, "ALICE")}, at(15, 9, 0))

	tests := []struct {
		name     string
		username string
		dir      kiosk.Direction
		day      int
		want     bool
	}{
		{"in on same day", "ALICE", kiosk.InTime, 15, true},
		{"out on same day", "ALICE", kiosk.OutTime, 15, false},
		{"in on next day", "ALICE", kiosk.InTime, 16, false},
		{"other user", "BOB", kiosk.InTime, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.HasEventClip(tt.username, tt.dir, at(tt.day, 18, 0))
			if err != nil {
				t.Fatalf("HasEventClip() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasEventClip() = %v, want %v", got, tt.want)
			}
		})
	}
}
