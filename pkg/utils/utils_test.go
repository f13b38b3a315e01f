package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码测试图片失败: %v", err)
	}
	return buf.Bytes()
}

func TestMakeThumbnail(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"横图", 400, 200, 200, 100},
		{"竖图", 100, 400, 50, 200},
		{"小图不放大", 80, 60, 80, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MakeThumbnail(encodePNG(t, tt.w, tt.h), 200, 200, 80)
			assert.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			assert.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}

	_, err := MakeThumbnail([]byte("not an image"), 200, 200, 80)
	assert.Error(t, err)
}

func TestDownloadImage(t *testing.T) {
	body := encodePNG(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	client := NewHTTPClient(ClientOptions{Timeout: 5 * time.Second})

	data, err := DownloadImage(context.Background(), client, srv.URL+"/ok.png")
	assert.NoError(t, err)
	assert.Equal(t, body, data)

	_, err = DownloadImage(context.Background(), client, srv.URL+"/missing.png")
	assert.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(64)
	assert.NoError(t, err)
	b, _ := GenerateRandomString(64)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
