// Package frameextract produces a single still frame from a video
// source by piping fetched bytes through an ffmpeg subprocess, guarded
// by a process-wide counting permit that bounds how many ffmpeg
// processes run concurrently.
package frameextract
