package video

import (
	"fmt"
	"strconv"

	"kiosk-go/internal/kiosk"
)

// encoderForTag maps a container codec tag to the ffmpeg encoder producing it.
func encoderForTag(tag string) string {
	switch tag {
	case "avc1", "h264":
		return "libx264"
	case "mp4v", "":
		return "mpeg4"
	default:
		return tag
	}
}

// BuildEncodeArgs returns the ffmpeg command that reads raw RGBA frames of
// format's geometry on stdin and writes an mp4 clip to dst.
func BuildEncodeArgs(ffmpegPath, dst string, format kiosk.ClipFormat) []string {
	tag := format.CodecTag
	if tag == "" {
		tag = kiosk.DefaultClipFormat.CodecTag
	}

	args := make([]string, 0, 32)
	args = append(args, ffmpegPath, "-hide_banner", "-loglevel", "error", "-y")

	// --- Input: raw frames on stdin ---
	args = append(args,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", format.Width, format.Height),
		"-r", strconv.FormatFloat(format.FPS, 'f', -1, 64),
		"-i", "pipe:0",
	)

	// --- Output ---
	args = append(args,
		"-an",
		"-c:v", encoderForTag(tag),
		"-tag:v", tag,
		"-pix_fmt", "yuv420p",
		"-f", "mp4",
		dst,
	)
	return args
}

// BuildFirstFrameArgs returns the ffmpeg command that decodes the first frame
// of src, scaled to width x height, as raw RGBA on stdout.
func BuildFirstFrameArgs(ffmpegPath, src string, width, height int) []string {
	return []string{
		ffmpegPath, "-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", src,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}
}

// BuildCaptureArgs returns the ffmpeg command that streams a capture device
// as raw RGBA frames of width x height on stdout.
func BuildCaptureArgs(ffmpegPath, inputFormat, device string, width, height int) []string {
	args := []string{ffmpegPath, "-hide_banner", "-loglevel", "error", "-nostdin"}
	if inputFormat != "" {
		args = append(args, "-f", inputFormat)
	}
	args = append(args,
		"-i", device,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	return args
}
