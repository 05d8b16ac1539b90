package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ErrCancelled is returned when the user leaves a picker without choosing.
var ErrCancelled = errors.New("selection cancelled")

type key int

const (
	keyNone key = iota
	keyUp
	keyDown
	keyEnter
	keyQuit
)

// readKey decodes one keypress: ANSI arrow sequences, Windows console
// scan codes, Enter, Esc and Ctrl-C.
func readKey(r *bufio.Reader) (key, error) {
	b1, err := r.ReadByte()
	if err != nil {
		return keyNone, err
	}

	// Windows console arrows arrive as 0 or 224 followed by a scan code
	if b1 == 0 || b1 == 224 {
		b2, err := r.ReadByte()
		if err != nil {
			return keyNone, err
		}
		switch b2 {
		case 72:
			return keyUp, nil
		case 80:
			return keyDown, nil
		case 13:
			return keyEnter, nil
		}
		return keyNone, nil
	}

	switch b1 {
	case 27:
		if r.Buffered() == 0 {
			return keyQuit, nil
		}
		b2, _ := r.ReadByte()
		if b2 != '[' || r.Buffered() == 0 {
			return keyNone, nil
		}
		b3, _ := r.ReadByte()
		switch b3 {
		case 'A':
			return keyUp, nil
		case 'B':
			return keyDown, nil
		}
	case 'k':
		return keyUp, nil
	case 'j':
		return keyDown, nil
	case '\r', '\n':
		return keyEnter, nil
	case 3, 'q':
		return keyQuit, nil
	}
	return keyNone, nil
}

// choose runs the picker loop over in, drawing to out, and returns the
// chosen index.
func choose(in io.Reader, out io.Writer, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("%s: nothing to choose from", title)
	}

	reader := bufio.NewReader(in)
	selected := 0

	redraw := func() {
		// Clear screen (ANSI reset to top + clear screen)
		fmt.Fprint(out, "\033[H\033[2J")
		fmt.Fprintf(out, "\033[1;33m%s\033[0m\r\n\r\n", title)
		for i, o := range options {
			prefix := "  "
			if i == selected {
				prefix = "> "
			}
			fmt.Fprint(out, prefix+o+"\r\n")
		}
		fmt.Fprint(out, "\r\n(↑/↓ to navigate, Enter to choose, Esc to quit)\r\n")
	}

	redraw()
	for {
		k, err := readKey(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return -1, ErrCancelled
			}
			return -1, err
		}

		switch k {
		case keyUp:
			if selected > 0 {
				selected--
				redraw()
			}
		case keyDown:
			if selected < len(options)-1 {
				selected++
				redraw()
			}
		case keyEnter:
			return selected, nil
		case keyQuit:
			return -1, ErrCancelled
		}
	}
}

// Select shows options on the terminal and returns the one picked with the
// arrow keys.
func Select(title string, options []string) (string, error) {
	if runtime.GOOS == "windows" {
		enableVT()
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("interactive selection not supported on this terminal: %w", err)
	}
	defer term.Restore(fd, oldState)

	i, err := choose(os.Stdin, os.Stdout, title, options)
	if err != nil {
		return "", err
	}
	return options[i], nil
}
