// Package assets implements the hosted image asset store. Posts and user
// profiles reference images by the public path this store returns; deleting a
// post or replacing a profile image removes the backing file.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"aviary/internal/config"
	"aviary/internal/models"
	"aviary/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxDimension is the longest edge stored; larger uploads are downscaled.
	MaxDimension = 2048
	JPEGQuality  = 82
	WebPQuality  = 70
)

// Store persists uploaded images on local disk and serves them by public path.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewStore creates a Store from configuration.
func NewStore(cfg *config.Config) *Store {
	return &Store{
		dir:      cfg.AssetDir,
		baseURL:  strings.TrimSuffix(cfg.AssetBaseURL, "/"),
		maxBytes: int64(cfg.AssetMaxUploadSizeMB) * 1024 * 1024,
	}
}

// Dir returns the directory backing the store, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save decodes an uploaded image (a data URL or bare base64 payload),
// normalizes it, writes it under a fresh name, and returns the public
// reference to persist on the owning record.
func (s *Store) Save(ctx context.Context, payload string) (string, error) {
	defer observability.TrackAssetOperation("save")()

	raw, err := decodePayload(payload)
	if err != nil {
		return "", models.NewValidationError("Invalid image data")
	}
	if int64(len(raw)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("Image too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(raw)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	decoded = downscale(decoded)

	name := uuid.New().String()
	var buf bytes.Buffer
	ext := ".jpg"
	switch format {
	case "webp":
		ext = ".webp"
		err = webp.Encode(&buf, decoded, &webp.Options{Quality: WebPQuality})
	default:
		err = jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("encode image: %w", err))
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", models.NewInternalError(fmt.Errorf("create asset dir: %w", err))
	}
	filename := name + ext
	if err := os.WriteFile(filepath.Join(s.dir, filename), buf.Bytes(), 0o644); err != nil {
		return "", models.NewInternalError(fmt.Errorf("write asset: %w", err))
	}

	slog.InfoContext(ctx, "asset stored",
		slog.String("filename", filename),
		slog.String("format", format),
		slog.Int("bytes", buf.Len()),
	)

	return s.baseURL + "/" + filename, nil
}

// Delete removes the file backing a public reference. A reference this store
// never issued, or a file already gone, is not an error: callers delete
// best-effort before overwriting or removing the owning record.
func (s *Store) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	defer observability.TrackAssetOperation("delete")()

	filename := path.Base(ref)
	if filename == "." || filename == "/" || strings.Contains(filename, "..") {
		return nil
	}

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return models.NewInternalError(fmt.Errorf("delete asset %s: %w", filename, err))
	}

	slog.InfoContext(ctx, "asset deleted", slog.String("filename", filename))
	return nil
}

// decodePayload accepts "data:image/...;base64,<data>" or a bare base64 string.
func decodePayload(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty payload")
	}
	data := payload
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		data = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(data)
}

func isAllowedImageMIME(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// downscale caps the longest edge at MaxDimension, preserving aspect ratio.
func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= MaxDimension && h <= MaxDimension {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = MaxDimension
		nh = h * MaxDimension / w
	} else {
		nh = MaxDimension
		nw = w * MaxDimension / h
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
