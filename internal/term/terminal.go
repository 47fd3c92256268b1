// Package term hosts a Machine in a terminal window using tcell: it blits
// the 160x144 framebuffer as half-block glyphs (two vertically-stacked
// pixels per character cell) and forwards key events to the joypad.
// Grounded on the teacher repo's jeebie/render/terminal.go approach, but
// rewritten around gbcore.Machine's exported API.
package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/haliberd/gbcore"
	"github.com/haliberd/gbcore/input"
	"github.com/haliberd/gbcore/video"
)

// shades maps a 2-bit DMG color index to a grayscale terminal color,
// lightest first.
var shades = [4]tcell.Color{
	tcell.NewRGBColor(0xE0, 0xE0, 0xE0),
	tcell.NewRGBColor(0x98, 0x98, 0x98),
	tcell.NewRGBColor(0x4C, 0x4C, 0x4C),
	tcell.NewRGBColor(0x00, 0x00, 0x00),
}

// defaultKeyMap maps terminal key runes to Game Boy buttons, grounded on
// jeebie/input/default_keys.go.
var defaultKeyMap = map[rune]input.Button{
	'w': input.Up,
	's': input.Down,
	'a': input.Left,
	'd': input.Right,
	'j': input.B,
	'k': input.A,
	'n': input.Select,
	'm': input.Start,
}

// Host renders a Machine's frames to a tcell screen and pumps key input
// back into it. It is the repository's reference frontend; the core
// itself has no dependency on tcell.
type Host struct {
	screen  tcell.Screen
	machine *gbcore.Machine
	quit    bool
}

// NewHost creates a tcell screen and returns a Host for the given Machine.
func NewHost(machine *gbcore.Machine) (*Host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal screen: %w", err)
	}
	return &Host{screen: screen, machine: machine}, nil
}

// Close restores the terminal.
func (h *Host) Close() { h.screen.Fini() }

// Step runs one frame, renders it and processes pending input events. It
// returns true once the user has quit (Escape or Ctrl-C).
func (h *Host) Step() (quit bool) {
	h.machine.RunFrame()
	h.render()
	h.pollEvents()
	return h.quit
}

func (h *Host) render() {
	fb := h.machine.Framebuffer()
	for y := 0; y < video.Height/2; y++ {
		for x := 0; x < video.Width; x++ {
			top := fb.GetPixel(x, y*2)
			bottom := fb.GetPixel(x, y*2+1)
			style := tcell.StyleDefault.Foreground(shades[top]).Background(shades[bottom])
			h.screen.SetContent(x, y, '▀', nil, style) // upper half block
		}
	}
	h.screen.Show()
}

func (h *Host) pollEvents() {
	for h.screen.HasPendingEvent() {
		ev := h.screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventKey:
			h.handleKey(e)
		case *tcell.EventResize:
			h.screen.Sync()
		}
	}
}

func (h *Host) handleKey(e *tcell.EventKey) {
	if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
		h.quit = true
		return
	}
	if button, ok := defaultKeyMap[e.Rune()]; ok {
		h.machine.PressButton(button)
	}
}
