package directive

import (
	"strings"

	"github.com/flox1an/nostube-imgproxy/internal/mediatypes"
)

// Mode selects the resize geometry algorithm applied by the transformer.
type Mode string

const (
	// ModeFit scales to fit within the target box without upscaling or
	// cropping.
	ModeFit Mode = "fit"
	// ModeFill scales to cover the target box, upscaling if needed, then
	// center-crops to it exactly.
	ModeFill Mode = "fill"
	// ModeFillDown behaves like ModeFill but never upscales.
	ModeFillDown Mode = "fill-down"
	// ModeForce stretches to the target box exactly, ignoring aspect ratio.
	ModeForce Mode = "force"
	// ModeAuto picks ModeFill or ModeFit based on whether the source and
	// target orientations match.
	ModeAuto Mode = "auto"
)

// DefaultMode is used when no rs/rt directive is present.
const DefaultMode = ModeFit

// ParseMode parses a case-insensitive mode token. It returns false if the
// token does not name a supported mode.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(s))
	switch m {
	case ModeFit, ModeFill, ModeFillDown, ModeForce, ModeAuto:
		return m, true
	default:
		return "", false
	}
}

// Resize carries the parsed geometry directive. Width and Height are 0 when
// absent from the request; Parse guarantees at least one is set
// whenever a resize directive was present at all.
type Resize struct {
	Mode   Mode
	Width  int
	Height int
}

// HasWidth reports whether a target width was given.
func (r Resize) HasWidth() bool { return r.Width > 0 }

// HasHeight reports whether a target height was given.
func (r Resize) HasHeight() bool { return r.Height > 0 }

// Requested reports whether any resize directive was present in the
// request path at all. A TransformRequest with Requested() == false leaves
// the source dimensions untouched; only re-encoding happens.
func (r Resize) Requested() bool {
	return r.Width > 0 || r.Height > 0
}

// Request is the fully parsed and validated representation of a
// transformation path: directives folded over a source URL.
type Request struct {
	SourceURL string
	Format    mediatypes.Format
	Quality   int
	Resize    Resize
}
