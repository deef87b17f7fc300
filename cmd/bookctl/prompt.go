package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirmer asks on the terminal before destructive actions. Without a
// terminal it refuses unless --yes was given.
type confirmer struct {
	yes         bool
	interactive bool
	in          io.Reader
	out         io.Writer
}

func (c *confirmer) Confirm(prompt string) bool {
	if c.yes {
		return true
	}
	if !c.interactive {
		fmt.Fprintln(c.out, "stdin is not a terminal; pass --yes to confirm")
		return false
	}

	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
