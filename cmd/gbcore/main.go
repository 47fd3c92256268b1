// Command gbcore runs the Game Boy core against a ROM file, either in an
// interactive terminal window or headlessly for scripted/test runs.
// Grounded on the teacher repo's cmd/jeebie/main.go urfave/cli surface.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/haliberd/gbcore"
	"github.com/haliberd/gbcore/internal/term"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Usage = "Game Boy (DMG) core emulator"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "headless", Usage: "run without opening a terminal window"},
		cli.IntFlag{Name: "frames", Usage: "frame count for --headless mode (0 = 60 frames)"},
		cli.BoolFlag{Name: "mute", Usage: "disable audio sample generation"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: gbcore [options] <rom path>")
	}
	romPath := c.Args().Get(0)

	sampleRate := 44100
	if c.Bool("mute") {
		sampleRate = 0
	}

	machine, err := gbcore.NewFromFile(romPath, sampleRate)
	if err != nil {
		return err
	}
	defer func() {
		if err := machine.Close(); err != nil {
			slog.Warn("could not write save file", "error", err)
		}
	}()

	if c.Bool("headless") {
		return runHeadless(machine, c.Int("frames"))
	}
	return runInteractive(machine)
}

func runHeadless(machine *gbcore.Machine, frames int) error {
	if frames <= 0 {
		frames = 60
	}
	for i := 0; i < frames; i++ {
		machine.RunFrame()
	}
	fb := machine.Framebuffer()
	checksum := uint32(0)
	for _, p := range fb.ToSlice() {
		checksum = checksum*31 + uint32(p)
	}
	fmt.Printf("frames=%d checksum=%08x\n", machine.FrameCount(), checksum)
	return nil
}

func runInteractive(machine *gbcore.Machine) error {
	host, err := term.NewHost(machine)
	if err != nil {
		return err
	}
	defer host.Close()

	for {
		if host.Step() {
			return nil
		}
	}
}
