package directive

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/flox1an/nostube-imgproxy/internal/apperr"
	"github.com/flox1an/nostube-imgproxy/internal/mediatypes"
)

// plainSentinel is the literal path segment separating directives from the
// source URL segment.
const plainSentinel = "plain"

// Parse parses the path suffix following the fixed "/insecure/" prefix into
// a validated Request. Leading and trailing slashes are tolerated.
func Parse(pathSuffix string) (*Request, error) {
	trimmed := strings.Trim(pathSuffix, "/")
	if trimmed == "" {
		return nil, apperr.New(apperr.BadRequest, "empty request path")
	}

	segments := strings.Split(trimmed, "/")

	plainIdx := -1
	for i, seg := range segments {
		if seg == plainSentinel {
			plainIdx = i
			break
		}
	}
	if plainIdx == -1 {
		return nil, apperr.New(apperr.BadRequest, "missing plain sentinel")
	}

	sourceSegs := segments[plainIdx+1:]
	if len(sourceSegs) != 1 || sourceSegs[0] == "" {
		return nil, apperr.New(apperr.BadRequest, "missing source url segment")
	}

	decoded, err := url.QueryUnescape(sourceSegs[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "malformed source url encoding", err)
	}

	sourceURL, err := validateSourceURL(decoded)
	if err != nil {
		return nil, err
	}

	req := &Request{
		SourceURL: sourceURL,
		Format:    mediatypes.DefaultFormat,
		Quality:   mediatypes.DefaultQuality,
		Resize:    Resize{Mode: DefaultMode},
	}

	for _, seg := range segments[:plainIdx] {
		if err := applyDirective(req, seg); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// validateSourceURL checks that decoded parses as an absolute http(s) URL.
func validateSourceURL(decoded string) (string, error) {
	u, err := url.Parse(decoded)
	if err != nil {
		return "", apperr.Wrap(apperr.BadRequest, "malformed source url", err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return "", apperr.New(apperr.BadRequest, "source url must be absolute http(s)")
	}
	if u.Host == "" {
		return "", apperr.New(apperr.BadRequest, "source url missing host")
	}
	return decoded, nil
}

// applyDirective folds one colon-delimited directive segment into req,
// overriding any earlier directive of the same key.
func applyDirective(req *Request, seg string) error {
	parts := strings.Split(seg, ":")
	key := parts[0]
	args := parts[1:]

	switch key {
	case "f":
		return applyFormat(req, args)
	case "q":
		return applyQuality(req, args)
	case "rs", "rt":
		return applyResize(req, args)
	default:
		return apperr.New(apperr.BadRequest, "unknown directive: "+key)
	}
}

func applyFormat(req *Request, args []string) error {
	if len(args) != 1 {
		return apperr.New(apperr.BadRequest, "f directive requires exactly one argument")
	}
	f, ok := mediatypes.ParseFormat(args[0])
	if !ok {
		return apperr.New(apperr.BadRequest, "unknown output format: "+args[0])
	}
	req.Format = f
	return nil
}

func applyQuality(req *Request, args []string) error {
	if len(args) != 1 {
		return apperr.New(apperr.BadRequest, "q directive requires exactly one argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return apperr.Wrap(apperr.BadRequest, "unparsable quality", err)
	}
	if n < 0 || n > 100 {
		return apperr.New(apperr.BadRequest, "quality out of range 0..100")
	}
	req.Quality = n
	return nil
}

func applyResize(req *Request, args []string) error {
	if len(args) != 3 {
		return apperr.New(apperr.BadRequest, "rs/rt directive requires mode:w:h")
	}
	mode, ok := ParseMode(args[0])
	if !ok {
		return apperr.New(apperr.BadRequest, "unknown resize mode: "+args[0])
	}

	w, err := parseOptionalDimension(args[1])
	if err != nil {
		return err
	}
	h, err := parseOptionalDimension(args[2])
	if err != nil {
		return err
	}
	if w == 0 && h == 0 {
		return apperr.New(apperr.BadRequest, "rs/rt requires at least one of width, height")
	}

	req.Resize = Resize{Mode: mode, Width: w, Height: h}
	return nil
}

// parseOptionalDimension parses a width/height argument that may be empty
// (meaning "derive from aspect ratio"). A present value must be a positive
// integer.
func parseOptionalDimension(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Wrap(apperr.BadRequest, "unparsable dimension", err)
	}
	if n <= 0 {
		return 0, apperr.New(apperr.BadRequest, "dimension must be positive")
	}
	return n, nil
}
