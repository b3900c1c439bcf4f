package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	listeningStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	recognizedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// Console echoes the conversation on the terminal.
type Console struct {
	out io.Writer
}

func New(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Listening() {
	c.println(listeningStyle.Render("Listening..."))
}

func (c *Console) Recognized(text string) {
	c.println(recognizedStyle.Render("Recognized: " + text))
}

func (c *Console) Assistant(text string) {
	c.println(assistantStyle.Render("Assistant: " + text))
}

func (c *Console) Println(text string) {
	c.println(text)
}

func (c *Console) println(line string) {
	if c == nil || c.out == nil {
		return
	}

	fmt.Fprintln(c.out, line)
}
