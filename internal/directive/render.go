package directive

import (
	"fmt"
	"net/url"
	"strings"
)

// Render re-serializes a Request into its canonical path suffix form,
// always emitting f and q, then rs when a resize was requested, followed
// by the plain sentinel and the percent-encoded source URL. Parsing Render's output
// always yields an equal Request, regardless of what directive ordering
// or aliasing (rt vs rs) produced the original.
func Render(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "f:%s/", req.Format)
	fmt.Fprintf(&b, "q:%d/", req.Quality)
	if req.Resize.Requested() {
		fmt.Fprintf(&b, "rs:%s:%s:%s/", req.Resize.Mode, dimToken(req.Resize.Width), dimToken(req.Resize.Height))
	}
	b.WriteString(plainSentinel)
	b.WriteByte('/')
	b.WriteString(url.QueryEscape(req.SourceURL))
	return b.String()
}

func dimToken(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}
