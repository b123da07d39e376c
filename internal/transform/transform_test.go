package transform

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/flox1an/nostube-imgproxy/internal/directive"
	"github.com/flox1an/nostube-imgproxy/internal/mediatypes"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestTransformDecodeResizeEncodePNGPath(t *testing.T) {
	src := encodeTestPNG(t, 1600, 900)
	req := directive.Request{
		Format:  mediatypes.FormatPNG,
		Quality: mediatypes.DefaultQuality,
		Resize:  directive.Resize{Mode: directive.ModeFit, Width: 800, Height: 800},
	}

	out, err := Transform(src, req)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	img, err := decode(out)
	if err != nil {
		t.Fatalf("decode(Transform output) error = %v", err)
	}
	w, h := dims(img)
	if w != 800 || h != 450 {
		t.Errorf("Transform() output dims = %dx%d, want 800x450", w, h)
	}
}

func TestTransformNoResizeRequestedPassesThroughDims(t *testing.T) {
	src := encodeTestPNG(t, 320, 240)
	req := directive.Request{
		Format:  mediatypes.FormatPNG,
		Quality: mediatypes.DefaultQuality,
	}

	out, err := Transform(src, req)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	img, err := decode(out)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	w, h := dims(img)
	if w != 320 || h != 240 {
		t.Errorf("Transform() with no resize directive = %dx%d, want unchanged 320x240", w, h)
	}
}

func TestTransformCorruptInputIsDecodeError(t *testing.T) {
	req := directive.Request{Format: mediatypes.FormatJPEG, Quality: 80}
	_, err := Transform([]byte("not an image"), req)
	if err == nil {
		t.Fatal("Transform() expected error for corrupt input, got nil")
	}
}

func TestEncodeJPEGFlattensAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
		}
	}

	out, err := encodeJPEG(img, 80)
	if err != nil {
		t.Fatalf("encodeJPEG() error = %v", err)
	}
	if len(out) == 0 {
		t.Fatal("encodeJPEG() produced no bytes")
	}
}
