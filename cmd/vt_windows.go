//go:build windows
// +build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableVT switches the console to virtual terminal mode on both sides so
// the ANSI sequences used by the interactive explorer (cursor movement,
// screen clear, colors) are delivered and interpreted.
func enableVT() {
	for _, f := range []struct {
		file *os.File
		flag uint32
	}{
		{os.Stdin, windows.ENABLE_VIRTUAL_TERMINAL_INPUT},
		{os.Stdout, windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING},
	} {
		h := windows.Handle(f.file.Fd())
		var mode uint32
		if windows.GetConsoleMode(h, &mode) == nil {
			windows.SetConsoleMode(h, mode|f.flag)
		}
	}
}
