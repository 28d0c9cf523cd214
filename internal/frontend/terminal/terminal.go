// Package terminal renders the emulator's framebuffer in a terminal using
// tcell, packing two scanlines into each character cell via the unicode
// half-block glyph and polling the keyboard for joypad input.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kvnbkr/pocketgb/internal/console"
	"github.com/kvnbkr/pocketgb/internal/joypad"
	"github.com/kvnbkr/pocketgb/internal/video"
)

const (
	width     = video.Width
	height    = video.Height
	frameTime = time.Second / 60
)

// keyMapping binds physical keys to joypad inputs.
var keyMapping = map[rune]joypad.Key{
	'w':  joypad.Up,
	's':  joypad.Down,
	'a':  joypad.Left,
	'd':  joypad.Right,
	'z':  joypad.B,
	'x':  joypad.A,
	'\r': joypad.Start,
	' ':  joypad.Select,
}

// Run drives con on a tcell screen until the user quits (Ctrl-C or Esc).
func Run(con *console.Console) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	quit := make(chan struct{})
	go watchSignals(quit)

	held := make(map[rune]bool)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return nil
		case <-ticker.C:
			for screen.HasPendingEvent() {
				ev := screen.PollEvent()
				if keyEv, ok := ev.(*tcell.EventKey); ok {
					if !processKey(con, keyEv, held) {
						return nil
					}
				}
			}

			con.RunOneFrame()
			drawFrame(screen, con.Frame())
			screen.Show()
		}
	}
}

func processKey(con *console.Console, ev *tcell.EventKey, held map[rune]bool) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}

	r := ev.Rune()
	if ev.Key() == tcell.KeyEnter {
		r = '\r'
	}
	key, ok := keyMapping[r]
	if !ok {
		return true
	}
	if !held[r] {
		held[r] = true
		con.PressKey(key)
		slog.Debug("key press", "rune", string(r))
	}
	return true
}

func watchSignals(quit chan struct{}) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	<-signals
	close(quit)
}

var shadeColors = []tcell.Color{
	tcell.ColorWhite,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlack,
}

func drawFrame(screen tcell.Screen, frame *video.Frame) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := shadeAt(frame, x, y)
			bottom := 0
			if y+1 < height {
				bottom = shadeAt(frame, x, y+1)
			}
			style := tcell.StyleDefault.Foreground(shadeColors[top]).Background(shadeColors[bottom])
			screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
}

// shadeAt buckets a pixel's red channel into one of 4 shades, for
// terminals that can't show RGB. The four DMG shades map back exactly;
// CGB colors are reduced to four shades by their red channel alone.
func shadeAt(frame *video.Frame, x, y int) int {
	i := (y*width + x) * 4
	r := frame.Pix[i]
	switch {
	case r >= 0xC0:
		return 0
	case r >= 0x80:
		return 1
	case r >= 0x40:
		return 2
	default:
		return 3
	}
}
