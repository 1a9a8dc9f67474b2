package tui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// copyText copies text to the system clipboard. A configured command wins;
// otherwise wl-copy, xclip or xsel are found by the clipboard package.
func copyText(text, command string) error {
	if command != "" {
		return runWithInput(command, text)
	}
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard command available")
	}
	return clipboard.WriteAll(text)
}

// openLink hands an action link to the desktop opener.
func openLink(link, command string) error {
	if command == "" {
		command = "xdg-open"
	}
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("invalid open command")
	}

	c := exec.Command(parts[0], append(parts[1:], link)...)
	if err := c.Start(); err != nil {
		return err
	}
	go func() { _ = c.Wait() }()
	return nil
}

func runWithInput(command, input string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("invalid clipboard command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(input)
	return c.Run()
}
