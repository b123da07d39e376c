// Package directive parses the path suffix of an on-the-fly transformation
// request into a validated TransformRequest.
//
// The grammar is a sequence of colon-delimited directive segments,
// terminated by the literal segment "plain", followed by exactly one
// percent-encoded source URL segment:
//
//	<dir>/<dir>/.../plain/<percent-encoded-url>
//
// Recognized directives are f (output format), q (quality), and rs/rt
// (resize geometry, rt being an alias of rs). Unknown directive keys and
// malformed arguments are rejected with a *apperr.Error of kind
// apperr.BadRequest. Later occurrences of the same directive override
// earlier ones, so the parser folds the segment sequence left to right into
// a single TransformRequest.
package directive
