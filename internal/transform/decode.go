package transform

import (
	"bytes"
	"image"

	_ "image/jpeg"
	_ "image/png"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/flox1an/nostube-imgproxy/internal/apperr"
)

// decode sniffs and decodes source image bytes into a pixel raster.
// JPEG, PNG, and WebP go through the standard decoder registry (WebP
// registered by this package's blank import); AVIF is routed through
// libvips, which is the only decoder in the dependency graph that
// understands it.
func decode(data []byte) (image.Image, error) {
	if isAVIF(data) {
		return decodeAVIF(data)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Wrap(apperr.Decode, "unsupported or corrupt source image", err)
	}
	return img, nil
}

// isAVIF checks the ISOBMFF "ftyp" box brand, the same byte-sniffing
// technique used to classify source files before decoding.
func isAVIF(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "avif" || brand == "avis"
}

func decodeAVIF(data []byte) (image.Image, error) {
	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, apperr.Wrap(apperr.Decode, "libvips failed to load avif", err)
	}
	defer ref.Close()

	pngBytes, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, apperr.Wrap(apperr.Decode, "libvips failed to export avif as png", err)
	}

	img, err := imaging.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, apperr.Wrap(apperr.Decode, "failed to decode libvips png round-trip", err)
	}
	return img, nil
}
