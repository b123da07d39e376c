package mediatypes

import (
	"net/url"
	"path"
	"strings"
)

// Format identifies an output image encoding.
type Format string

const (
	// FormatJPEG is baseline JPEG.
	FormatJPEG Format = "jpeg"
	// FormatPNG is lossless PNG.
	FormatPNG Format = "png"
	// FormatWebP is lossy WebP.
	FormatWebP Format = "webp"
	// FormatAVIF is lossy AVIF.
	FormatAVIF Format = "avif"
)

// DefaultFormat is used when a request does not specify f:<fmt>.
const DefaultFormat = FormatJPEG

// DefaultQuality is used when a request does not specify q:<n>.
const DefaultQuality = 82

// formatExtensions maps a Format to its canonical on-disk extension,
// matching the processed-cache filename convention.
var formatExtensions = map[Format]string{
	FormatJPEG: ".jpg",
	FormatPNG:  ".png",
	FormatWebP: ".webp",
	FormatAVIF: ".avif",
}

// formatContentTypes maps a Format to its HTTP Content-Type.
var formatContentTypes = map[Format]string{
	FormatJPEG: "image/jpeg",
	FormatPNG:  "image/png",
	FormatWebP: "image/webp",
	FormatAVIF: "image/avif",
}

// ParseFormat parses a case-insensitive format token from a directive.
// It returns false if the token does not name a supported format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "jpeg", "jpg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "webp":
		return FormatWebP, true
	case "avif":
		return FormatAVIF, true
	default:
		return "", false
	}
}

// Ext returns the canonical file extension for a Format, including the
// leading dot.
func (f Format) Ext() string {
	return formatExtensions[f]
}

// ContentType returns the HTTP Content-Type for a Format.
func (f Format) ContentType() string {
	if ct, ok := formatContentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// QualityMeaningful reports whether the quality directive has any effect on
// encoding for this format. PNG is lossless, so quality is accepted but
// ignored.
func (f Format) QualityMeaningful() bool {
	return f != FormatPNG
}

// videoExtensions lists the case-insensitive suffixes that mark a source
// URL as video rather than still-image content.
var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".webm": true, ".mkv": true,
	".flv": true, ".wmv": true, ".m4v": true, ".mpg": true, ".mpeg": true,
	".3gp": true, ".ogv": true,
}

// IsVideoURL reports whether the source URL's path has a video extension.
// Query strings and fragments are ignored; only the path suffix matters.
func IsVideoURL(sourceURL string) bool {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return videoExtensions[strings.ToLower(path.Ext(sourceURL))]
	}
	return videoExtensions[strings.ToLower(path.Ext(u.Path))]
}
