package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/foodshare/backend/config"
)

var (
	ErrUnsupportedType = errors.New("only JPEG, PNG, and WebP images are allowed")
	ErrFileTooLarge    = errors.New("file size must be less than 10MB")
	ErrSuspiciousName  = errors.New("invalid file name or type")
	ErrImageTooLarge   = errors.New("image dimensions must be 4000x4000 or smaller")
	ErrRetryExhausted  = errors.New("signed URL retry budget exhausted")
)

const (
	// MaxUploadBytes is the hard ceiling on accepted upload size.
	MaxUploadBytes = 10 * 1024 * 1024
	// maxDimension bounds decoded pixel dimensions on either axis.
	maxDimension = 4000
	// CreateMaxLongSide is the downscale target for newly uploaded photos.
	CreateMaxLongSide = 1400
	// DisplayMaxLongSide is the downscale target for display resampling.
	DisplayMaxLongSide = 1100

	jpegQuality = 80

	// PlaceholderPath is served when an image cannot be resolved at all.
	PlaceholderPath = "/static/meal-placeholder.svg"

	signedURLTTL = time.Hour
)

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Defense-in-depth against script-like uploads; the MIME allow-list is the
// primary gate.
var suspiciousNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.php$`),
	regexp.MustCompile(`(?i)\.js$`),
	regexp.MustCompile(`(?i)\.html$`),
	regexp.MustCompile(`(?i)\.exe$`),
	regexp.MustCompile(`(?i)\.bat$`),
	regexp.MustCompile(`(?i)\.sh$`),
	regexp.MustCompile(`(?i)script`),
}

// ImageService prepares user photos for storage: validate, downscale,
// re-encode as JPEG, upload to S3.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// ValidateUpload rejects uploads before any decode or network work.
func ValidateUpload(filename, contentType string, size int64) error {
	if !allowedMIMETypes[strings.ToLower(contentType)] {
		return ErrUnsupportedType
	}
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	for _, pattern := range suspiciousNamePatterns {
		if pattern.MatchString(filename) {
			return ErrSuspiciousName
		}
	}
	return nil
}

// ProcessAndUpload validates, downscales, and stores an uploaded image,
// returning its public URL. Nothing is persisted on any failure.
func (s *ImageService) ProcessAndUpload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if err := ValidateUpload(filename, contentType, int64(len(data))); err != nil {
		return "", err
	}

	// Dimension check from the header alone, before a full decode.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("could not read image file: %w", err)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return "", ErrImageTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("could not decode image: %w", err)
	}

	scaled := Downscale(src, CreateMaxLongSide)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	key := fmt.Sprintf("meal-images/%s.jpg", uuid.New().String())
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.s3Config.PublicURL(key), nil
}

// Downscale shrinks src so its longer side is at most maxLongSide, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func Downscale(src image.Image, maxLongSide int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tw, th := targetSize(w, h, maxLongSide)
	if tw == w && th == h {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func targetSize(w, h, maxLongSide int) (int, int) {
	long := w
	if h > w {
		long = h
	}
	if long <= maxLongSide {
		return w, h
	}
	scale := float64(maxLongSide) / float64(long)
	tw := int(float64(w)*scale + 0.5)
	th := int(float64(h)*scale + 0.5)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	// The longer side lands exactly on target; rounding only moves the short one.
	if w >= h {
		tw = maxLongSide
	} else {
		th = maxLongSide
	}
	return tw, th
}

// storage reference shapes: public object paths, render-transform paths, and
// bare object keys
var (
	publicPathRe = regexp.MustCompile(`object/public/([^/]+)/([^?]+)`)
	renderPathRe = regexp.MustCompile(`render/image/public/([^/]+)/([^?]+)`)
)

// ParseStorageRef extracts a bucket and object path from a stored image
// reference. Fully-qualified external URLs that don't match a storage shape
// return ok=false.
func ParseStorageRef(rawURL string) (bucket, path string, ok bool) {
	if rawURL == "" {
		return "", "", false
	}
	if m := publicPathRe.FindStringSubmatch(rawURL); m != nil {
		return m[1], m[2], true
	}
	if m := renderPathRe.FindStringSubmatch(rawURL); m != nil {
		return m[1], m[2], true
	}
	if !strings.HasPrefix(rawURL, "http") {
		return "", strings.TrimLeft(rawURL, "/"), true
	}
	return "", "", false
}

type resolveState int

const (
	stateFirstAttempt resolveState = iota
	stateRetried
)

// resolveBudgetTTL bounds how long an exhausted budget entry lives. Expired
// entries are swept on the next resolution, so the state map cannot grow
// without bound and a poisoned reference heals itself.
const resolveBudgetTTL = 10 * time.Minute

// resolveKey scopes the retry budget to one caller and one reference, so one
// client spending its retry never pushes another client to the placeholder.
type resolveKey struct {
	caller string
	ref    string
}

type resolveEntry struct {
	state resolveState
	at    time.Time
}

// ImageResolver re-resolves broken image references to freshly signed URLs.
// Each caller gets exactly one retry per reference within the budget window;
// a second resolution attempt reports ErrRetryExhausted and the caller falls
// back to the placeholder. The two-state machine makes the give-up-after-one
// policy explicit.
type ImageResolver struct {
	s3Config *config.S3Config

	mu     sync.Mutex
	states map[resolveKey]resolveEntry
}

func NewImageResolver(s3Config *config.S3Config) *ImageResolver {
	return &ImageResolver{
		s3Config: s3Config,
		states:   make(map[resolveKey]resolveEntry),
	}
}

// Resolve issues a time-limited signed URL for a failing image reference.
// caller identifies who is asking (authenticated user id or client address).
func (r *ImageResolver) Resolve(ctx context.Context, caller, rawURL string) (string, error) {
	now := time.Now()
	key := resolveKey{caller: caller, ref: rawURL}

	r.mu.Lock()
	for k, entry := range r.states {
		if now.Sub(entry.at) > resolveBudgetTTL {
			delete(r.states, k)
		}
	}
	if entry, ok := r.states[key]; ok && entry.state == stateRetried {
		r.mu.Unlock()
		return "", ErrRetryExhausted
	}
	r.states[key] = resolveEntry{state: stateRetried, at: now}
	r.mu.Unlock()

	_, path, ok := ParseStorageRef(rawURL)
	if !ok {
		return "", fmt.Errorf("not a storage reference: %s", rawURL)
	}

	signed, err := r.s3Config.GeneratePresignedURL(ctx, path, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL: %w", err)
	}
	return signed, nil
}
