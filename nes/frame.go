package nes

import (
	"image"
	"image/color"
)

// Frame is the pixel buffer the renderer draws into, one NES screen worth
// of RGBA. It keeps the host toolkit at arm's length: the UI only ever sees
// the finished image.
type Frame struct {
	image *image.RGBA
}

func NewFrame() *Frame {
	return &Frame{
		image: image.NewRGBA(image.Rect(0, 0, visibleScreenWidth, visibleScreenHeight)),
	}
}

// SetPixel writes one pixel, silently dropping anything off screen so
// sprite edges can hang over the border.
func (f *Frame) SetPixel(x, y int, c color.RGBA) {
	if 0 <= x && x < visibleScreenWidth && 0 <= y && y < visibleScreenHeight {
		f.image.SetRGBA(x, y, c)
	}
}

// Image returns the backing image for the host to upload.
func (f *Frame) Image() *image.RGBA {
	return f.image
}
