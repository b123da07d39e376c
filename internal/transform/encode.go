package transform

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/flox1an/nostube-imgproxy/internal/apperr"
	"github.com/flox1an/nostube-imgproxy/internal/mediatypes"
)

// encode renders img in the requested output format at the requested
// quality. quality is ignored for PNG, which is lossless.
func encode(img image.Image, format mediatypes.Format, quality int) ([]byte, error) {
	switch format {
	case mediatypes.FormatJPEG:
		return encodeJPEG(img, quality)
	case mediatypes.FormatPNG:
		return encodePNG(img)
	case mediatypes.FormatWebP:
		return encodeViaVips(img, func(ref *vips.ImageRef) ([]byte, error) {
			out, _, err := ref.ExportWebp(&vips.WebpExportParams{Quality: quality})
			return out, err
		})
	case mediatypes.FormatAVIF:
		return encodeViaVips(img, func(ref *vips.ImageRef) ([]byte, error) {
			out, _, err := ref.ExportAvif(&vips.AvifExportParams{Quality: quality})
			return out, err
		})
	default:
		return nil, apperr.New(apperr.Encode, "unsupported output format")
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	flat := flattenAlpha(img)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, apperr.Wrap(apperr.Encode, "jpeg encode failed", err)
	}
	return buf.Bytes(), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperr.Wrap(apperr.Encode, "png encode failed", err)
	}
	return buf.Bytes(), nil
}

// encodeViaVips round-trips img through a PNG buffer into libvips,
// which is the only codec in the dependency graph that can write WebP
// or AVIF. export performs the format-specific libvips export call.
func encodeViaVips(img image.Image, export func(*vips.ImageRef) ([]byte, error)) ([]byte, error) {
	pngBytes, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	ref, err := vips.NewImageFromBuffer(pngBytes)
	if err != nil {
		return nil, apperr.Wrap(apperr.Encode, "libvips failed to load intermediate png", err)
	}
	defer ref.Close()

	out, err := export(ref)
	if err != nil {
		return nil, apperr.Wrap(apperr.Encode, "libvips export failed", err)
	}
	return out, nil
}

// flattenAlpha composites img over opaque white, since JPEG has no
// alpha channel.
func flattenAlpha(img image.Image) image.Image {
	if !hasAlpha(img) {
		return img
	}

	b := img.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)
	return flat
}

func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		model := img.ColorModel()
		return model == color.RGBAModel || model == color.NRGBAModel ||
			model == color.RGBA64Model || model == color.NRGBA64Model
	default:
		return false
	}
}
