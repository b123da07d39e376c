package transform

import "github.com/flox1an/nostube-imgproxy/internal/directive"

// Transform decodes sourceBytes, applies the requested resize geometry
// (if any), and re-encodes to the requested output format and quality.
func Transform(sourceBytes []byte, req directive.Request) ([]byte, error) {
	img, err := decode(sourceBytes)
	if err != nil {
		return nil, err
	}

	if req.Resize.Requested() {
		b := img.Bounds()
		w, h := resolveTargetDims(b.Dx(), b.Dy(), req.Resize.Width, req.Resize.Height)
		img = applyGeometry(img, req.Resize.Mode, w, h)
	}

	return encode(img, req.Format, req.Quality)
}
