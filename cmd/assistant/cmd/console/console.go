// Package console holds the terminal helpers shared by the CLI commands:
// line prompts, colored status lines and JSON output.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"assistant/internal/infrastructure/storage"
)

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Prompter читает ответы построчно. Подсказки печатаются только в терминале,
// поэтому ответы можно передать и через конвейер.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: IsTerminal(in),
	}
}

func (p *Prompter) Interactive() bool {
	return p.interactive
}

// Out returns the writer prompts are printed to.
func (p *Prompter) Out() io.Writer {
	return p.out
}

// Line prints label and reads one line without the trailing newline.
// It returns io.EOF once the input is exhausted.
func (p *Prompter) Line(label string) (string, error) {
	if p.interactive && label != "" {
		fmt.Fprint(p.out, label)
	}
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", io.EOF
		}
		err = nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ввода: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask asks for a value. An empty answer or the end of input returns def.
func (p *Prompter) Ask(label, def string) (string, error) {
	prompt := label + ": "
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, def)
	}
	line, err := p.Line(prompt)
	if errors.Is(err, io.EOF) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Success печатает зеленую строку об успешной операции.
func Success(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(w, "✅ "+format+"\n", args...)
}

// Warn печатает желтое предупреждение.
func Warn(w io.Writer, format string, args ...any) {
	color.New(color.FgYellow).Fprintf(w, "⚠️  "+format+"\n", args...)
}

// Failure печатает красное сообщение об ошибке.
func Failure(w io.Writer, format string, args ...any) {
	color.New(color.FgRed).Fprintf(w, "❌ "+format+"\n", args...)
}

// WriteJSON writes v as indented JSON, leaving non-ASCII text readable.
func WriteJSON(w io.Writer, v any) error {
	data, err := storage.JSON{}.Marshal(v)
	if err != nil {
		return fmt.Errorf("ошибка кодирования JSON: %w", err)
	}
	_, err = w.Write(data)
	return err
}
