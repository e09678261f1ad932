package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// confirm asks a yes/no question; anything but y or yes means no.
func confirm(in io.Reader, out io.Writer, message string) bool {
	fmt.Fprint(out, message)
	answer, err := readPromptLine(in)
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readPromptLine reads one byte at a time up to LF or CR, so several
// prompts can share a reader and Enter works in raw terminal mode too.
// A final line without a terminator is returned with a nil error.
func readPromptLine(in io.Reader) (string, error) {
	var buf []byte
	var one [1]byte
	for {
		n, err := in.Read(one[:])
		if n > 0 {
			if one[0] == '\n' || one[0] == '\r' {
				return string(buf), nil
			}
			buf = append(buf, one[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 {
				return string(buf), nil
			}
			return string(buf), err
		}
	}
}

// readUntilDot collects lines until one holding only "." or end of input.
func readUntilDot(in io.Reader) (string, error) {
	var lines []string
	for {
		line, err := readPromptLine(in)
		if err != nil {
			return strings.Join(lines, "\n"), err
		}
		if strings.TrimSpace(line) == "." {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}
