package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestUploader(captured **s3.PutObjectInput) *S3Uploader {
	u := &S3Uploader{
		cfg: Config{
			Bucket:        "canteenhub-reviews",
			PublicBaseURL: "http://localhost:9000/canteenhub-reviews/",
		},
		now:   func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) },
		newID: func() string { return "fixed-id" },
	}
	u.putObject = func(_ context.Context, input *s3.PutObjectInput) error {
		*captured = input
		return nil
	}
	return u
}

func TestUpload(t *testing.T) {
	var captured *s3.PutObjectInput
	u := newTestUploader(&captured)

	url, err := u.Upload(context.Background(), pngDataURI(t, 16, 16))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/canteenhub-reviews/reviews/2026/08/28/fixed-id.webp", url)

	require.NotNil(t, captured)
	assert.Equal(t, "canteenhub-reviews", *captured.Bucket)
	assert.Equal(t, "reviews/2026/08/28/fixed-id.webp", *captured.Key)
	assert.Equal(t, "image/webp", *captured.ContentType)

	// The stored object is a decodable webp image.
	raw, err := io.ReadAll(captured.Body)
	require.NoError(t, err)
	stored, err := webp.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 16, stored.Bounds().Dx())
}

func TestUploadDownscalesLargeImages(t *testing.T) {
	var captured *s3.PutObjectInput
	u := newTestUploader(&captured)

	_, err := u.Upload(context.Background(), pngDataURI(t, maxDimension*2, maxDimension))
	require.NoError(t, err)

	raw, err := io.ReadAll(captured.Body)
	require.NoError(t, err)
	stored, err := webp.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, maxDimension, stored.Bounds().Dx())
	assert.Equal(t, maxDimension/2, stored.Bounds().Dy())
}

func TestUploadRejectsBadPayloads(t *testing.T) {
	var captured *s3.PutObjectInput
	u := newTestUploader(&captured)

	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"data URI without comma", "data:image/png;base64"},
		{"invalid base64", "data:image/png;base64,!!!"},
		{"not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Upload(context.Background(), tt.payload)
			assert.Error(t, err)
		})
	}
	assert.Nil(t, captured, "nothing should be stored for rejected payloads")
}

func TestDecodePayloadRawBase64(t *testing.T) {
	raw, err := decodePayload(base64.StdEncoding.EncodeToString([]byte("bytes")))
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), raw)
}
