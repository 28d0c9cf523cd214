//go:build sdl2

// Package sdl2 renders the emulator's framebuffer in a resizable window
// using SDL2, behind a build tag so the default build doesn't need cgo.
package sdl2

import (
	"fmt"

	"github.com/kvnbkr/pocketgb/internal/console"
	"github.com/kvnbkr/pocketgb/internal/joypad"
	"github.com/kvnbkr/pocketgb/internal/video"
	"github.com/veandco/go-sdl2/sdl"
)

const pixelScale = 4

var keyMapping = map[sdl.Keycode]joypad.Key{
	sdl.K_UP:     joypad.Up,
	sdl.K_DOWN:   joypad.Down,
	sdl.K_LEFT:   joypad.Left,
	sdl.K_RIGHT:  joypad.Right,
	sdl.K_z:      joypad.B,
	sdl.K_x:      joypad.A,
	sdl.K_RETURN: joypad.Start,
	sdl.K_RSHIFT: joypad.Select,
}

// Run opens an SDL2 window and drives con until it is closed.
func Run(con *console.Console) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("init sdl2: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("pocketgb",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		video.Width*pixelScale, video.Height*pixelScale, sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING, video.Width, video.Height)
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}
	defer texture.Destroy()

	for {
		quit, err := pumpEvents(con)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}

		con.RunOneFrame()

		frame := con.Frame()
		if err := texture.Update(nil, frame.Pix[:], video.Stride); err != nil {
			return fmt.Errorf("update texture: %w", err)
		}
		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()
	}
}

func pumpEvents(con *console.Console) (quit bool, err error) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true, nil
		case *sdl.KeyboardEvent:
			key, ok := keyMapping[e.Keysym.Sym]
			if !ok {
				continue
			}
			switch e.Type {
			case sdl.KEYDOWN:
				con.PressKey(key)
			case sdl.KEYUP:
				con.ReleaseKey(key)
			}
		}
	}
	return false, nil
}
