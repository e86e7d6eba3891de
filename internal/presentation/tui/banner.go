package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the spherecal ASCII art banner.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Violet)
	s1 := termenv.String("            _                              _ ").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("  ___ _ __ | |__   ___ _ __ ___  ___  __ _| |").Foreground(p.Color("#22d3ee"))
	s3 := termenv.String(" / __| '_ \\| '_ \\ / _ \\ '__/ _ \\/ __|/ _` | |").Foreground(p.Color("#38bdf8"))
	s4 := termenv.String(" \\__ \\ |_) | | | |  __/ | |  __/ (__| (_| | |").Foreground(p.Color("#60a5fa"))
	s5 := termenv.String(" |___/ .__/|_| |_|\\___|_|  \\___|\\___|\\__,_|_|").Foreground(p.Color("#818cf8"))
	s6 := termenv.String("     |_|                                     ").Foreground(p.Color("#a78bfa"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println(termenv.String(fmt.Sprintf("  camera-sphere calibration v%s", version)).Faint())
	fmt.Println()
}
