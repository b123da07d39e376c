// Package memlimit configures the Go runtime's soft memory limit from
// container memory limits, reserving headroom for libvips and ffmpeg
// allocations that sit outside the Go heap.
package memlimit
