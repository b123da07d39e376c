package transform

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/flox1an/nostube-imgproxy/internal/directive"
)

// resolveTargetDims fills in whichever of w, h is absent (zero) from
// the source aspect ratio, with a minimum of 1px. Both present values
// are returned unchanged.
func resolveTargetDims(sw, sh, w, h int) (int, int) {
	switch {
	case w > 0 && h > 0:
		return w, h
	case w > 0:
		return w, maxInt(1, roundDiv(w*sh, sw))
	case h > 0:
		return maxInt(1, roundDiv(h*sw, sh)), h
	default:
		return sw, sh
	}
}

// applyGeometry resizes and/or crops img per the resize mode, using the
// already-resolved target dimensions w, h.
func applyGeometry(img image.Image, mode directive.Mode, w, h int) image.Image {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()

	switch mode {
	case directive.ModeFit:
		return fit(img, sw, sh, w, h)
	case directive.ModeFill:
		return fill(img, sw, sh, w, h, true)
	case directive.ModeFillDown:
		return fill(img, sw, sh, w, h, false)
	case directive.ModeForce:
		return imaging.Resize(img, w, h, imaging.Lanczos)
	case directive.ModeAuto:
		sourceLandscape := sw >= sh
		targetLandscape := w >= h
		if sourceLandscape == targetLandscape {
			return fill(img, sw, sh, w, h, true)
		}
		return fit(img, sw, sh, w, h)
	default:
		return fit(img, sw, sh, w, h)
	}
}

// fit scales uniformly to stay within w x h, never upscaling and never
// cropping.
func fit(img image.Image, sw, sh, w, h int) image.Image {
	scale := minFloat(float64(w)/float64(sw), float64(h)/float64(sh))
	if scale >= 1 {
		return img
	}
	nw := maxInt(1, roundFloat(float64(sw)*scale))
	nh := maxInt(1, roundFloat(float64(sh)*scale))
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// fill scales uniformly to cover w x h, then center-crops to the
// covering result. When upscale is false the covering scale factor is
// clamped to 1, so the crop may fall short of w x h on an axis where
// the source was already smaller (FillDown).
func fill(img image.Image, sw, sh, w, h int, upscale bool) image.Image {
	scale := maxFloat(float64(w)/float64(sw), float64(h)/float64(sh))
	if !upscale && scale > 1 {
		scale = 1
	}

	nw := maxInt(1, roundFloat(float64(sw)*scale))
	nh := maxInt(1, roundFloat(float64(sh)*scale))
	scaled := img
	if nw != sw || nh != sh {
		scaled = imaging.Resize(img, nw, nh, imaging.Lanczos)
	}

	cw := minInt(w, nw)
	ch := minInt(h, nh)
	offX := (nw - cw) / 2
	offY := (nh - ch) / 2
	rect := image.Rect(offX, offY, offX+cw, offY+ch)
	return imaging.Crop(scaled, rect)
}

func roundDiv(a, b int) int {
	return roundFloat(float64(a) / float64(b))
}

func roundFloat(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
