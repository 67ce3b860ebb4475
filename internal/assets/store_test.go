package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"aviary/internal/config"
	"aviary/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(&config.Config{
		AssetDir:             t.TempDir(),
		AssetBaseURL:         "/assets",
		AssetMaxUploadSizeMB: 10,
	})
}

func pngDataURL(t *testing.T, w, h int) string {
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

func TestStore_SaveAndDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ref, err := s.Save(ctx, pngDataURL(t, 8, 8))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/assets/"))

	onDisk := filepath.Join(s.Dir(), path.Base(ref))
	_, statErr := os.Stat(onDisk)
	require.NoError(t, statErr, "stored asset should exist on disk")

	require.NoError(t, s.Delete(ctx, ref))
	_, statErr = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_SaveBareBase64(t *testing.T) {
	s := testStore(t)

	dataURL := pngDataURL(t, 4, 4)
	bare := dataURL[strings.Index(dataURL, ",")+1:]

	ref, err := s.Save(context.Background(), bare)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
}

func TestStore_SaveRejectsGarbage(t *testing.T) {
	s := testStore(t)

	cases := map[string]string{
		"empty":          "",
		"not base64":     "!!not-base64!!",
		"not an image":   base64.StdEncoding.EncodeToString([]byte("plain text, no pixels")),
		"malformed data": "data:image/png;base64",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(context.Background(), payload)
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestStore_SaveDownscalesLargeImages(t *testing.T) {
	s := testStore(t)

	ref, err := s.Save(context.Background(), pngDataURL(t, MaxDimension+400, 100))
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(s.Dir(), path.Base(ref)))
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, MaxDimension)
}

func TestStore_DeleteMissingAndForeignRefs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	assert.NoError(t, s.Delete(ctx, ""))
	assert.NoError(t, s.Delete(ctx, "/assets/never-stored.jpg"))
	assert.NoError(t, s.Delete(ctx, "https://cdn.example.com/foreign/ref.png"))
}
