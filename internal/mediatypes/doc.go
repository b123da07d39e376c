// Package mediatypes provides shared type definitions and utilities for
// classifying source media and describing output encodings.
//
// This package exists as a dependency-free foundation that can be imported
// by other packages without creating import cycles. It contains primitive
// types, constants, and pure utility functions with no external
// dependencies beyond the standard library.
//
// # Source classification
//
// IsVideoURL reports whether a source URL is video-typed by file extension,
// which determines whether the pipeline routes through the frame extractor
// or the plain image fetch-and-decode path.
//
// # Output formats
//
// Format identifies one of the four supported output encodings. Ext and
// ContentType map a Format to its canonical file extension and HTTP
// Content-Type.
package mediatypes
