package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/kvnbkr/pocketgb/internal/cartridge"
	"github.com/kvnbkr/pocketgb/internal/console"
	"github.com/kvnbkr/pocketgb/internal/frontend/sdl2"
	"github.com/kvnbkr/pocketgb/internal/frontend/terminal"
)

func main() {
	app := cli.NewApp()
	app.Name = "pocketgb"
	app.Description = "A Game Boy / Game Boy Color emulator core"
	app.Usage = "pocketgb [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to an optional boot ROM",
		},
		cli.BoolFlag{
			Name:  "cgb",
			Usage: "Run in Game Boy Color mode",
		},
		cli.BoolFlag{
			Name:  "sdl2",
			Usage: "Use the SDL2 windowed frontend instead of the terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a frontend",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "save",
			Usage: "Path to a save-RAM file to load and write back to",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}

	savePath := c.String("save")
	var ram []byte
	if savePath != "" {
		if data, err := os.ReadFile(savePath); err == nil {
			ram = data
		}
	}

	cart, err := cartridge.New(rom, ram)
	if err != nil {
		return fmt.Errorf("load cartridge: %w", err)
	}
	slog.Info("loaded rom", "title", cart.Title, "mbc", cart.MBCType, "cgb", cart.CGB)

	var bootROM []byte
	if path := c.String("boot-rom"); path != "" {
		bootROM, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read boot rom: %w", err)
		}
	}

	model := console.DMG
	if c.Bool("cgb") {
		model = console.CGB
	}
	con := console.New(cart, model, bootROM)

	if c.Bool("headless") {
		if err := runHeadless(c, con); err != nil {
			return err
		}
	} else if c.Bool("sdl2") {
		if err := sdl2.Run(con); err != nil {
			return err
		}
	} else {
		if err := terminal.Run(con); err != nil {
			return err
		}
	}

	if savePath != "" {
		if data := con.SaveRAM(); data != nil {
			if err := os.WriteFile(savePath, data, 0o644); err != nil {
				slog.Error("failed to write save-RAM", "path", savePath, "error", err)
			}
		}
	}

	return nil
}

func runHeadless(c *cli.Context, con *console.Console) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	for i := 0; i < frames; i++ {
		con.RunOneFrame()
		if (i+1)%60 == 0 {
			slog.Info("frame progress", "completed", i+1, "total", frames)
		}
	}
	slog.Info("headless execution completed", "frames", frames)
	return nil
}
