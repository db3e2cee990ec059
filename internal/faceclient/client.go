package faceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"kiosk-go/internal/kiosk"
)

// DefaultTimeout bounds a single request to the face service.
const DefaultTimeout = 30 * time.Second

// Client talks to a face detection/encoding service over HTTP. Frames are
// uploaded as JPEG multipart forms.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

type detectResult struct {
	Boxes []box `json:"boxes"`
}

type encodeResult struct {
	Encodings [][]float64 `json:"encodings"`
}

// New creates a client for the service at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// DetectFaces returns the bounding boxes of all faces in frame.
func (c *Client) DetectFaces(ctx context.Context, frame kiosk.Frame) ([]kiosk.BoundingBox, error) {
	var result detectResult
	if err := c.post(ctx, "/detect", frame, &result); err != nil {
		return nil, fmt.Errorf("face service detect: %w", err)
	}

	boxes := make([]kiosk.BoundingBox, 0, len(result.Boxes))
	for _, b := range result.Boxes {
		boxes = append(boxes, kiosk.BoundingBox{Top: b.Top, Right: b.Right, Bottom: b.Bottom, Left: b.Left})
	}
	return boxes, nil
}

// EncodeFaces returns one descriptor per face in frame.
func (c *Client) EncodeFaces(ctx context.Context, frame kiosk.Frame) ([]kiosk.Encoding, error) {
	var result encodeResult
	if err := c.post(ctx, "/encode", frame, &result); err != nil {
		return nil, fmt.Errorf("face service encode: %w", err)
	}

	encodings := make([]kiosk.Encoding, 0, len(result.Encodings))
	for _, e := range result.Encodings {
		encodings = append(encodings, kiosk.Encoding(e))
	}
	return encodings, nil
}

func (c *Client) post(ctx context.Context, path string, frame kiosk.Frame, out any) error {
	if frame.Image == nil {
		return fmt.Errorf("frame %d has no image", frame.Seq)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("photo", fmt.Sprintf("frame-%d.jpg", frame.Seq))
	if err != nil {
		return err
	}
	if err := imaging.Encode(fw, frame.Image, imaging.JPEG); err != nil {
		return fmt.Errorf("encoding frame %d: %w", frame.Seq, err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Compile-time check that Client implements kiosk.FaceDetector interface
var _ kiosk.FaceDetector = (*Client)(nil)

// Compile-time check that Client implements kiosk.FaceEncoder interface
var _ kiosk.FaceEncoder = (*Client)(nil)
