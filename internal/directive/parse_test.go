package directive

import (
	"testing"

	"github.com/flox1an/nostube-imgproxy/internal/mediatypes"
)

func TestParseBasic(t *testing.T) {
	req, err := Parse("f:webp/q:70/rs:fill:300:200/plain/https%3A%2F%2Fexample.com%2Fa.jpg")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if req.Format != mediatypes.FormatWebP {
		t.Errorf("Format = %v, want webp", req.Format)
	}
	if req.Quality != 70 {
		t.Errorf("Quality = %v, want 70", req.Quality)
	}
	if req.Resize.Mode != ModeFill || req.Resize.Width != 300 || req.Resize.Height != 200 {
		t.Errorf("Resize = %+v, want fill:300:200", req.Resize)
	}
	if req.SourceURL != "https://example.com/a.jpg" {
		t.Errorf("SourceURL = %q", req.SourceURL)
	}
}

func TestParseDefaults(t *testing.T) {
	req, err := Parse("plain/https%3A%2F%2Fexample.com%2Fa.jpg")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if req.Format != mediatypes.DefaultFormat {
		t.Errorf("Format = %v, want default", req.Format)
	}
	if req.Quality != mediatypes.DefaultQuality {
		t.Errorf("Quality = %v, want default", req.Quality)
	}
	if req.Resize.Requested() {
		t.Errorf("Resize = %+v, want not requested", req.Resize)
	}
}

func TestParseLastWriterWins(t *testing.T) {
	req, err := Parse("f:png/f:avif/q:10/q:90/plain/https%3A%2F%2Fexample.com%2Fa.jpg")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if req.Format != mediatypes.FormatAVIF {
		t.Errorf("Format = %v, want avif (last writer wins)", req.Format)
	}
	if req.Quality != 90 {
		t.Errorf("Quality = %v, want 90 (last writer wins)", req.Quality)
	}
}

func TestParseRtAliasesRs(t *testing.T) {
	req, err := Parse("rt:fit:100:/plain/https%3A%2F%2Fexample.com%2Fa.jpg")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if req.Resize.Mode != ModeFit || req.Resize.Width != 100 || req.Resize.Height != 0 {
		t.Errorf("Resize = %+v, want fit:100:0", req.Resize)
	}
}

func TestParseOneSidedDimension(t *testing.T) {
	req, err := Parse("rs:fit::400/plain/https%3A%2F%2Fexample.com%2Fa.jpg")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if req.Resize.HasWidth() {
		t.Error("expected no width")
	}
	if !req.Resize.HasHeight() || req.Resize.Height != 400 {
		t.Errorf("Resize = %+v, want height 400", req.Resize)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing plain sentinel", "f:webp/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"missing source segment", "f:webp/plain"},
		{"extra source segments", "plain/a/b"},
		{"unknown directive", "z:1/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"unknown format", "f:gif/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"f wrong arity", "f:webp:extra/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"unparsable quality", "q:abc/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"quality out of range", "q:101/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"unknown resize mode", "rs:stretch:10:10/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"both resize dims empty", "rs:fit::/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"resize wrong arity", "rs:fit:10/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"negative dimension", "rs:fit:-5:10/plain/https%3A%2F%2Fexample.com%2Fa.jpg"},
		{"malformed source encoding", "plain/%zz"},
		{"relative source url", "plain/%2Ffoo%2Fbar.jpg"},
		{"non-http scheme", "plain/ftp%3A%2F%2Fexample.com%2Fa.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", tt.path)
			}
		})
	}
}

func TestParseRenderRoundTrip(t *testing.T) {
	inputs := []string{
		"plain/https%3A%2F%2Fexample.com%2Fa.jpg",
		"f:webp/q:55/rs:fill:200:100/plain/https%3A%2F%2Fexample.com%2Fa.jpg",
		"rs:auto::300/plain/https%3A%2F%2Fexample.com%2Fpath%2Fto%2Fimg.png%3Fx%3D1",
	}

	for _, in := range inputs {
		req, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", in, err)
		}

		rendered := Render(*req)
		again, err := Parse(rendered)
		if err != nil {
			t.Fatalf("Parse(Render(...)) error = %v, rendered = %q", err, rendered)
		}
		if *again != *req {
			t.Errorf("round trip mismatch: got %+v, want %+v", *again, *req)
		}
	}
}
