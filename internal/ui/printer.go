package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/muurk/lpac-console/internal/loader"
	"github.com/muurk/lpac-console/internal/view"
	"github.com/muurk/lpac-console/internal/workflow"
)

// Printer writes UI components to a writer. Commands print all of their
// styled output through it.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the width used for boxes
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) {
	p.width = width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...workflow.Detail) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// PrintResult prints a result box
func (p *Printer) PrintResult(r *Result) {
	p.Println(r.SetWidth(p.width).Render())
	p.Newline()
}

// PrintOutcome prints the result box for a finished operation. Nothing is
// printed for a cancelled or rejected operation; the feedback surface has
// already said so.
func (p *Printer) PrintOutcome(out workflow.Outcome) {
	if out.Cancelled || (!out.Succeeded() && out.Operation.ID == "") {
		return
	}
	p.PrintResult(ResultFromOutcome(out))
}

// PrintSnapshot prints a loaded view in the given format. Unavailable and
// error branches get a failure box in the detailed format.
func (p *Printer) PrintSnapshot(s *loader.Snapshot, f Format) error {
	if f == FormatDetailed {
		sel := view.SelectBranch(s)
		switch sel.Branch {
		case view.BranchUnavailable, view.BranchError:
			p.PrintResult(NewSelectionResult(sel))
			return nil
		}
	}

	text, err := FormatSnapshot(s, f)
	if err != nil {
		return err
	}
	p.Print(text)
	return nil
}
