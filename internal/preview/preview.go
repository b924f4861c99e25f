// Package preview adapts the teacher's SDL2 window helpers into an optional
// live view onto a running render: one filled rectangle per canvas cell,
// redrawn whenever the coordinator has new rows to show.
package preview

import (
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/mwindels/turtlemesh/internal/canvas"
)

// These constants mirror the teacher's screen package: a modest redraw
// rate is enough for a word being streamed one chunk at a time.
const (
	FPS        uint32 = 30
	MsPerFrame uint32 = 1000 / FPS
)

// Preview is a single SDL2 window showing the canvas at scale pixels per
// cell. It is optional: callers that never construct one pay no SDL cost.
type Preview struct {
	window  *sdl.Window
	surface *sdl.Surface
	scale   int32

	unset uint32
	drawn uint32
}

// New opens a window sized (width*scale) x (height*scale) and initializes
// SDL2 video, following the teacher's StartScreen two-step init-then-create
// sequence with matching unwind-on-error defers.
func New(name string, width, height, scale int) (p *Preview, err error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "preview: sdl init")
	}
	defer func() {
		if err != nil {
			sdl.Quit()
		}
	}()

	window, err := sdl.CreateWindow(name, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width*scale), int32(height*scale), sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, errors.Wrap(err, "preview: create window")
	}
	defer func() {
		if err != nil {
			window.Destroy()
		}
	}()

	surface, err := window.GetSurface()
	if err != nil {
		return nil, errors.Wrap(err, "preview: get surface")
	}

	return &Preview{
		window:  window,
		surface: surface,
		scale:   int32(scale),
		unset:   sdl.MapRGB(surface.Format, 16, 16, 16),
		drawn:   sdl.MapRGB(surface.Format, 255, 255, 255),
	}, nil
}

// Close destroys the window and shuts down SDL2, mirroring the teacher's
// StopScreen.
func (p *Preview) Close() {
	p.window.Destroy()
	sdl.Quit()
}

// PumpEvents drains the SDL event queue so the OS doesn't consider the
// window unresponsive between redraws. It never blocks.
func (p *Preview) PumpEvents() {
	for sdl.PollEvent() != nil {
	}
}

// Draw repaints every cell of c and flips the window surface.
func (p *Preview) Draw(c *canvas.Canvas) error {
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			color := p.unset
			if c.At(x, y) {
				color = p.drawn
			}
			rect := sdl.Rect{X: int32(x) * p.scale, Y: int32(y) * p.scale, W: p.scale, H: p.scale}
			if err := p.surface.FillRect(&rect, color); err != nil {
				return errors.Wrap(err, "preview: fill rect")
			}
		}
	}
	return p.window.UpdateSurface()
}
