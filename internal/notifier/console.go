// Package notifier renders and delivers the daily review.
package notifier

import (
	"fmt"
	"io"
	"os"
)

// Notifier delivers a rendered report.
type Notifier interface {
	Send(text string) error
}

// ConsoleNotifier writes reports to a writer, stdout by default.
type ConsoleNotifier struct {
	Out io.Writer
}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{Out: os.Stdout}
}

func (c *ConsoleNotifier) Send(text string) error {
	_, err := fmt.Fprintln(c.Out, text)
	return err
}
