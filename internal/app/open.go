package app

import (
	"fmt"
	"os/exec"
	"strings"
)

// Opener launches url outside the terminal, typically in a browser.
type Opener func(url string) error

// CommandOpener returns an Opener that runs command with the URL appended,
// e.g. "xdg-open" or "open -a Firefox". An empty command returns nil.
func CommandOpener(command string) Opener {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	return func(url string) error {
		args := append(append([]string{}, fields[1:]...), url)
		cmd := exec.Command(fields[0], args...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("running %s: %w", fields[0], err)
		}
		// Reap the child without blocking the UI.
		go func() { _ = cmd.Wait() }()
		return nil
	}
}
