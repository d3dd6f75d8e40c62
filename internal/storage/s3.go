// Package storage handles review image uploads to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"canteenhub/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxDimension is the longest edge stored images are downscaled to.
const maxDimension = 2048

// webpQuality is the lossy encode quality for stored images.
const webpQuality = 85

// Uploader stores a client-submitted image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, payload string) (string, error)
}

// Config carries the object storage connection settings.
type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Uploader transcodes review images to webp and stores them in S3.
type S3Uploader struct {
	client *s3.Client
	cfg    Config

	// seams for tests
	putObject func(ctx context.Context, input *s3.PutObjectInput) error
	now       func() time.Time
	newID     func() string
}

// NewS3Uploader builds an uploader against an S3-compatible endpoint
// such as MinIO.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	u := &S3Uploader{
		client: client,
		cfg:    cfg,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	u.putObject = func(ctx context.Context, input *s3.PutObjectInput) error {
		_, err := client.PutObject(ctx, input)
		return err
	}
	return u, nil
}

// Upload accepts a data URI or raw base64 image payload, normalizes it
// to webp, and stores it under a date-partitioned key.
func (u *S3Uploader) Upload(ctx context.Context, payload string) (string, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return "", models.NewValidationError(err.Error())
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewValidationError("unsupported image format")
	}
	img = downscale(img, maxDimension)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return "", models.NewInternalError(fmt.Errorf("encode webp: %w", err))
	}

	key := u.objectKey()
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/webp"),
	}
	if err := u.putObject(ctx, input); err != nil {
		return "", models.NewInternalError(fmt.Errorf("put object: %w", err))
	}

	return strings.TrimSuffix(u.cfg.PublicBaseURL, "/") + "/" + key, nil
}

// objectKey builds a date-partitioned key like reviews/2026/08/28/<uuid>.webp.
func (u *S3Uploader) objectKey() string {
	t := u.now().UTC()
	return fmt.Sprintf("reviews/%04d/%02d/%02d/%s.webp",
		t.Year(), t.Month(), t.Day(), u.newID())
}

// decodePayload strips an optional data URI prefix and base64-decodes
// the image bytes.
func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("image payload is empty")
	}
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = payload[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data")
	}
	return raw, nil
}

// downscale resizes img so its longest edge is at most max, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func downscale(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}

	var nw, nh int
	if w > h {
		nw = max
		nh = h * max / w
	} else {
		nh = max
		nw = w * max / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
