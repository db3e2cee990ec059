// Package video encodes kiosk clips and decodes their first frame by piping
// raw RGBA frames through an ffmpeg subprocess.
//
// Every frame is normalised to the clip geometry before encoding, so clips
// written from any camera share the same size and rate.
package video
