package mediatypes

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Format
		ok   bool
	}{
		{"jpeg", "jpeg", FormatJPEG, true},
		{"jpg alias", "jpg", FormatJPEG, true},
		{"png", "png", FormatPNG, true},
		{"webp", "webp", FormatWebP, true},
		{"avif", "avif", FormatAVIF, true},
		{"uppercase", "WEBP", FormatWebP, true},
		{"unknown", "gif", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFormat(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseFormat(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatExtAndContentType(t *testing.T) {
	tests := []struct {
		f    Format
		ext  string
		ct   string
	}{
		{FormatJPEG, ".jpg", "image/jpeg"},
		{FormatPNG, ".png", "image/png"},
		{FormatWebP, ".webp", "image/webp"},
		{FormatAVIF, ".avif", "image/avif"},
	}

	for _, tt := range tests {
		if got := tt.f.Ext(); got != tt.ext {
			t.Errorf("%v.Ext() = %q, want %q", tt.f, got, tt.ext)
		}
		if got := tt.f.ContentType(); got != tt.ct {
			t.Errorf("%v.ContentType() = %q, want %q", tt.f, got, tt.ct)
		}
	}
}

func TestFormatQualityMeaningful(t *testing.T) {
	if FormatPNG.QualityMeaningful() {
		t.Error("PNG quality should not be meaningful")
	}
	for _, f := range []Format{FormatJPEG, FormatWebP, FormatAVIF} {
		if !f.QualityMeaningful() {
			t.Errorf("%v quality should be meaningful", f)
		}
	}
}

func TestIsVideoURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/clip.mp4", true},
		{"https://example.com/clip.MOV", true},
		{"https://example.com/clip.webm?x=1", true},
		{"https://example.com/photo.jpg", false},
		{"https://example.com/photo.jpeg#frag", false},
		{"https://example.com/noext", false},
		{"not a url at all but .avi suffix.avi", true},
	}

	for _, tt := range tests {
		if got := IsVideoURL(tt.url); got != tt.want {
			t.Errorf("IsVideoURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
