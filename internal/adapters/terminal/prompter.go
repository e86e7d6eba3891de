// Package terminal implements the operator prompt surface on a line-based
// console. It owns input resolution (defaults, re-prompting on junk) so the
// wizard core only ever sees clean answers.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

// ContentRenderer optionally transforms prompt text before display, e.g. the
// glamour renderer from internal/presentation/tui.
type ContentRenderer func(string) (string, error)

// Prompter asks keep/discard and method-menu questions over text streams.
type Prompter struct {
	source      io.Reader
	interactive bool // true if reading from CONIN$ (Windows) where EOF should be ignored
	Reader      *bufio.Reader
	Writer      io.Writer
	Renderer    ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// Option defines configuration for Prompter.
type Option func(*Prompter)

// WithRenderer configures the prompt text renderer.
func WithRenderer(renderer ContentRenderer) Option {
	return func(p *Prompter) {
		p.Renderer = renderer
	}
}

// NewPrompter creates a prompter over the given streams. Nil reader or writer
// defaults to stdin and stdout.
func NewPrompter(r io.Reader, w io.Writer, opts ...Option) *Prompter {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	p := &Prompter{
		source: r,
		Writer: w,
	}

	// Windows Specific: Check if we are running in a terminal.
	// If so, we MUST use CONIN$ to read input to support graceful signal handling.
	p.source, p.interactive = resolveInputReader(r)

	p.Reader = bufio.NewReader(p.source)

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ConfirmKeep asks whether to keep a previously stored artifact. Enter and
// y/yes keep it; n/no discards; anything else re-prompts.
func (p *Prompter) ConfirmKeep(ctx context.Context, prompt string) (bool, error) {
	p.display(prompt + " ([y]/n)")
	for {
		text, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(text) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.Writer, "Invalid input. Please answer y or n.")
	}
}

// SelectMethod presents the transform method menu. Empty input selects 1;
// non-numeric input re-prompts; out-of-range numbers are passed through for
// the wizard to reject.
func (p *Prompter) SelectMethod(ctx context.Context) (int, error) {
	p.display(methodMenu)
	for {
		text, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		if text == "" {
			return 1, nil
		}
		choice, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintln(p.Writer, "Invalid input. Please enter a number.")
			continue
		}
		return choice, nil
	}
}

const methodMenu = `Choose how to define the camera-to-subject transform:
  1) X-Y square corners (default)
  2) Y-Z square corners
  3) X-Z square corners
  4) (reserved)
  5) external transform`

func (p *Prompter) display(text string) {
	output := text
	if p.Renderer != nil {
		rendered, err := p.Renderer(text)
		if err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(p.Writer, strings.TrimSpace(output))
}

func (p *Prompter) initPump() {
	p.startOnce.Do(func() {
		p.inputChan = make(chan inputResult)
		go p.pump()
	})
}

func (p *Prompter) pump() {
	for {
		text, err := p.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			p.inputChan <- inputResult{text: text, err: nil}
		}

		if err != nil {
			if err == io.EOF {
				if p.interactive {
					// In interactive mode (e.g. Windows CONIN$), EOF might mean
					// a signal interrupted the read while the stream stays valid.
					// Pass the EOF through so the current read fails, but keep
					// the channel open for reads after signal handling.
					p.inputChan <- inputResult{text: "", err: io.EOF}
					// Prevent busy loop if EOFs are generated rapidly (e.g. holding Ctrl+C)
					time.Sleep(50 * time.Millisecond)
					continue
				}
				close(p.inputChan)
				return
			}
			// Send non-EOF errors
			p.inputChan <- inputResult{text: "", err: err}
			// Backoff for non-fatal errors to prevent CPU spikes on persistent failure
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// readLine blocks for one line of input, honoring context cancellation.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.initPump()

	// Only show the prompt if the context is not yet done
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		fmt.Fprint(p.Writer, "> ")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

// resolveInputReader attempts to open a platform-specific terminal reader
// (e.g., CONIN$ on Windows) via the lifecycle library. Returns the reader to
// use and whether it is an interactive terminal handled specially.
func resolveInputReader(defaultReader io.Reader) (io.Reader, bool) {
	if r, err := lifecycle.UpgradeTerminal(defaultReader); err == nil && r != defaultReader {
		return r, true
	}
	return defaultReader, false
}
