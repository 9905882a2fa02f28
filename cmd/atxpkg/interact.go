package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/rpodgorny/atxpkg/internal/install"
)

// ask prompts on stdout/stdin when stdin is a terminal; otherwise it
// answers defaultYes without prompting, so non-interactive runs (cron,
// CI) never block on input they cannot provide.
func ask(prompt string, defaultYes bool) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return defaultYes
	}
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	fmt.Printf("%s [%s] ", prompt, hint)

	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return defaultYes
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	switch answer {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	default:
		return false
	}
}

type lineProgress struct {
	label string
	total int
	done  int
	tty   bool
}

func newProgress(label string, total int) install.Progress {
	return &lineProgress{label: label, total: total, tty: isatty.IsTerminal(os.Stdout.Fd())}
}

func (p *lineProgress) Add(n int) {
	p.done += n
	if !p.tty {
		return
	}
	fmt.Printf("\r%s: %d/%d", p.label, p.done, p.total)
}

func (p *lineProgress) Finish() {
	if p.tty {
		fmt.Println()
	}
}
