// Package confirm gates mutating operations behind an interactive y/N/ALL
// prompt.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var ErrNotInteractive = errors.New("confirmation required; re-run with --yes")

var promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// Policy is shared by every operation of one command run. Once the user
// answers ALL, or the run started with --yes, no further prompt is shown.
type Policy struct {
	mu          sync.Mutex
	all         bool
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func NewPolicy(yes bool, in io.Reader, out io.Writer) *Policy {
	p := &Policy{all: yes, out: out, interactive: isInteractive(in)}
	if in != nil {
		p.in = bufio.NewReader(in)
	}
	return p
}

// Yes reports whether prompts are currently skipped.
func (p *Policy) Yes() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.all
}

// Confirm asks msg and reports whether to proceed. Answering ALL proceeds and
// turns every later prompt of this policy into an implicit yes.
func (p *Policy) Confirm(msg string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.all {
		return true, nil
	}
	if p.in == nil || !p.interactive {
		return false, ErrNotInteractive
	}
	if p.out != nil {
		fmt.Fprintf(p.out, "%s [y/N/ALL]: ", promptStyle.Render(msg))
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.TrimSpace(line)
	switch {
	case answer == "ALL":
		p.all = true
		return true, nil
	case strings.EqualFold(answer, "y"), strings.EqualFold(answer, "yes"):
		return true, nil
	default:
		return false, nil
	}
}

// isInteractive treats a terminal and any non-file reader (pipes built in
// tests, here-strings) as able to answer; a redirected file or /dev/null is not.
func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return in != nil
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
