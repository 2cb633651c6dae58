// Package video discovers input files and moves raw frames in and out of
// ffmpeg.
//
// Decoding and encoding run ffmpeg through github.com/u2takey/ffmpeg-go
// with rgb24 frames on a pipe, one width*height*3 byte record per frame.
// The pipeline depends only on the Opener, FrameSource and FrameSink
// interfaces so it can run against in-memory fakes.
package video
