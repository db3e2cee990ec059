package video_test

import (
	"image"
	"image/color"
	"slices"
	"strings"
	"testing"

	"kiosk-go/internal/kiosk"
	"kiosk-go/internal/video"
)

func argAfter(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func TestBuildEncodeArgs(t *testing.T) {
	tests := []struct {
		name        string
		format      kiosk.ClipFormat
		wantEncoder string
		wantTag     string
	}{
		{"mp4v", kiosk.DefaultClipFormat, "mpeg4", "mp4v"},
		{"empty tag", kiosk.ClipFormat{FPS: 20, Width: 640, Height: 480}, "mpeg4", "mp4v"},
		{"avc1", kiosk.ClipFormat{FPS: 20, Width: 640, Height: 480, CodecTag: "avc1"}, "libx264", "avc1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := video.BuildEncodeArgs("/usr/bin/ffmpeg", "/db/ALICE.mp4", tt.format)
			if args[0] != "/usr/bin/ffmpeg" {
				t.Errorf("args[0] = %q, want ffmpeg path", args[0])
			}
			if got := args[len(args)-1]; got != "/db/ALICE.mp4" {
				t.Errorf("last arg = %q, want destination", got)
			}
			if got := argAfter(args, "-c:v"); got != tt.wantEncoder {
				t.Errorf("-c:v = %q, want %q", got, tt.wantEncoder)
			}
			if got := argAfter(args, "-tag:v"); got != tt.wantTag {
				t.Errorf("-tag:v = %q, want %q", got, tt.wantTag)
			}
			if got := argAfter(args, "-s"); got != "640x480" {
				t.Errorf("-s = %q, want %q", got, "640x480")
			}
			if got := argAfter(args, "-r"); got != "20" {
				t.Errorf("-r = %q, want %q", got, "20")
			}
			if got := argAfter(args, "-i"); got != "pipe:0" {
				t.Errorf("-i = %q, want %q", got, "pipe:0")
			}
		})
	}
}

func TestBuildFirstFrameArgs(t *testing.T) {
	args := video.BuildFirstFrameArgs("ffmpeg", "ALICE.mp4", 640, 480)
	if got := argAfter(args, "-i"); got != "ALICE.mp4" {
		t.Errorf("-i = %q", got)
	}
	if got := argAfter(args, "-frames:v"); got != "1" {
		t.Errorf("-frames:v = %q, want 1", got)
	}
	if got := argAfter(args, "-vf"); got != "scale=640:480" {
		t.Errorf("-vf = %q", got)
	}
	if args[len(args)-1] != "pipe:1" {
		t.Errorf("last arg = %q, want pipe:1", args[len(args)-1])
	}
}

func TestBuildCaptureArgs(t *testing.T) {
	withFormat := video.BuildCaptureArgs("ffmpeg", "v4l2", "/dev/video0", 320, 240)
	if got := argAfter(withFormat, "-f"); got != "v4l2" {
		t.Errorf("-f = %q, want v4l2", got)
	}
	if got := argAfter(withFormat, "-i"); got != "/dev/video0" {
		t.Errorf("-i = %q", got)
	}

	noFormat := video.BuildCaptureArgs("ffmpeg", "", "rtsp://cam/stream", 320, 240)
	if strings.Join(noFormat[:6], " ") != "ffmpeg -hide_banner -loglevel error -nostdin -i" {
		t.Errorf("capture args = %q", noFormat)
	}
}

func TestNormalize(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 2))
	src.SetGray(0, 0, color.Gray{Y: 200})

	same := video.Normalize(src, 4, 2)
	if same.Bounds().Dx() != 4 || same.Bounds().Dy() != 2 {
		t.Errorf("Normalize() bounds = %v", same.Bounds())
	}
	if r, _, _, _ := same.At(0, 0).RGBA(); r>>8 != 200 {
		t.Errorf("pixel (0,0) red = %d, want 200", r>>8)
	}

	resized := video.Normalize(src, 8, 6)
	if resized.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Errorf("Normalize() resized bounds = %v", resized.Bounds())
	}
	if len(resized.Pix) != 8*6*4 {
		t.Errorf("len(Pix) = %d, want %d", len(resized.Pix), 8*6*4)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	if got := video.Normalize(nrgba, 4, 2); got != nrgba {
		t.Error("Normalize() copied an image already in clip geometry")
	}
}

func TestFromRGBA(t *testing.T) {
	buf := make([]byte, 2*3*4)
	buf[0] = 255
	img, err := video.FromRGBA(buf, 2, 3)
	if err != nil {
		t.Fatalf("FromRGBA() error = %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 2, 3) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if c := img.NRGBAAt(0, 0); c.R != 255 {
		t.Errorf("pixel (0,0) = %v", c)
	}

	if _, err := video.FromRGBA(buf[:5], 2, 3); err == nil {
		t.Error("FromRGBA() with short buffer expected error")
	}
}

func TestNewFFmpegCodec_MissingBinary(t *testing.T) {
	codec := video.NewFFmpegCodec("/nonexistent/ffmpeg", kiosk.DefaultClipFormat)
	if err := codec.Encode(t.TempDir()+"/out.mp4", nil, kiosk.DefaultClipFormat); err == nil {
		t.Error("Encode() with missing binary expected error")
	}
	if _, _, err := codec.FirstFrame("in.mp4"); err == nil {
		t.Error("FirstFrame() with missing binary expected error")
	}
}
