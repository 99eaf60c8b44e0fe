package covers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bbrks/go-blurhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCover renders a simple two-tone cover so the hash has structure.
func testCover(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if y < height/2 {
				img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 30, G: 30, B: 120, A: 255})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompute_ProducesDecodableHash(t *testing.T) {
	hash, err := Compute(bytes.NewReader(testCover(t, 240, 320)))
	require.NoError(t, err)

	// A valid hash round-trips through the decoder.
	x, y, err := blurhash.Components(hash)
	require.NoError(t, err)
	assert.Equal(t, 4, x)
	assert.Equal(t, 3, y)
}

func TestCompute_SmallImageSkipsShrink(t *testing.T) {
	hash, err := Compute(bytes.NewReader(testCover(t, 32, 48)))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestCompute_RejectsNonImage(t *testing.T) {
	_, err := Compute(strings.NewReader("this is not an image"))
	assert.Error(t, err)
}

func TestBlurhashFromURL(t *testing.T) {
	cover := testCover(t, 120, 174)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(cover)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(slog.New(slog.DiscardHandler))
	hash, err := f.BlurhashFromURL(context.Background(), srv.URL+"/thumb.png")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestBlurhashFromURL_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(slog.New(slog.DiscardHandler))

	_, err := f.BlurhashFromURL(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)

	_, err = f.BlurhashFromURL(context.Background(), "")
	assert.Error(t, err)
}
