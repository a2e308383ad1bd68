package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muurk/lpac-console/internal/workflow"
)

// TerminalFeedback is the line-oriented workflow.Feedback used by the CLI.
// Answers given on the command line are consumed once; if validation
// rejects them the next prompt reads from the terminal, and end of input
// declines.
type TerminalFeedback struct {
	in      *bufio.Reader
	out     io.Writer
	width   int
	animate bool

	// AssumeYes answers plain yes/no confirmations without asking.
	// Typed tokens are never assumed.
	AssumeYes bool

	mu     sync.Mutex
	text   *string
	option *bool
}

// NewTerminalFeedback creates a feedback surface reading answers from in
func NewTerminalFeedback(in io.Reader, out io.Writer) *TerminalFeedback {
	return &TerminalFeedback{
		in:      bufio.NewReader(in),
		out:     out,
		width:   GetTerminalWidth(),
		animate: IsTerminal(out),
	}
}

// PresetText supplies the answer to the next text or token prompt
func (f *TerminalFeedback) PresetText(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = &s
}

// PresetOption supplies the answer to the next option prompt
func (f *TerminalFeedback) PresetOption(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.option = &v
}

// SetWidth overrides the detected terminal width
func (f *TerminalFeedback) SetWidth(width int) {
	f.width = width
}

func (f *TerminalFeedback) takeText() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.text == nil {
		return "", false
	}
	s := *f.text
	f.text = nil
	return s, true
}

func (f *TerminalFeedback) takeOption() (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.option == nil {
		return false, false
	}
	v := *f.option
	f.option = nil
	return v, true
}

// readLine returns one line without its terminator. Surrounding spaces are
// kept so that typed tokens are compared exactly.
func (f *TerminalFeedback) readLine() (string, bool) {
	line, err := f.in.ReadString('\n')
	if err != nil && line == "" {
		_, _ = fmt.Fprintln(f.out)
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (f *TerminalFeedback) ask(question string) (string, bool) {
	_, _ = fmt.Fprint(f.out, question)
	return f.readLine()
}

// Confirm implements workflow.Feedback
func (f *TerminalFeedback) Confirm(p workflow.Prompt) workflow.Answer {
	_, _ = fmt.Fprintln(f.out, RenderPrompt(p, f.width))
	_, _ = fmt.Fprintln(f.out)

	var ans workflow.Answer

	if p.Token != "" || p.Input != nil {
		text, ok := f.takeText()
		if !ok {
			if text, ok = f.ask(promptLine(p)); !ok {
				return workflow.Answer{}
			}
		}
		ans.Text = text
	}

	if p.Option != nil {
		ans.Option = p.Option.Default
		if v, ok := f.takeOption(); ok {
			ans.Option = v
		} else if !f.AssumeYes {
			line, ok := f.ask(optionLine(*p.Option))
			if !ok {
				return workflow.Answer{}
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				ans.Option = true
			case "n", "no":
				ans.Option = false
			}
		}
	}

	if p.Token == "" && p.Input == nil && !f.AssumeYes {
		line, ok := f.ask(promptLine(p))
		if !ok {
			return workflow.Answer{}
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
		default:
			return workflow.Answer{}
		}
	}

	ans.Accepted = true
	return ans
}

// Notify implements workflow.Feedback
func (f *TerminalFeedback) Notify(level workflow.Level, message string) {
	marker := LevelStyle(level).Render(LevelMarker(level))
	_, _ = fmt.Fprintln(f.out, marker+" "+message)
}

// Progress implements workflow.Feedback
func (f *TerminalFeedback) Progress(message string) func() {
	return StartSpinner(f.out, message, f.animate).Stop
}
