package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/avirbig/cohen-services-hub/internal/model"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

type reporter struct {
	w io.Writer
}

func newReporter(w io.Writer) *reporter {
	return &reporter{w: w}
}

// fieldStates prints one line per field; invalid fields carry their message.
func (r *reporter) fieldStates(states []model.FieldState) {
	for _, fs := range states {
		if fs.Valid {
			okColor.Fprint(r.w, "  ok   ")
			dimColor.Fprintln(r.w, fs.Name)
			continue
		}
		failColor.Fprint(r.w, "  fail ")
		fmt.Fprintf(r.w, "%s: %s\n", fs.Name, fs.Error)
	}
}

func (r *reporter) banner(res submitResult) {
	switch {
	case res.success != "":
		okColor.Fprintln(r.w, res.success)
	case res.failure != "":
		failColor.Fprintln(r.w, res.failure)
	case !res.started:
		warnColor.Fprintln(r.w, "not submitted")
	}
	dimColor.Fprintf(r.w, "outcome: %s\n", outcomeLabel(res.outcome))
}

func outcomeLabel(o model.Outcome) string {
	if o.Kind == "" {
		return "none"
	}
	return o.String()
}

// consoleNotifier prints attachment notices instead of rendering them on the
// page.
type consoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w}
}

func (n *consoleNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	warnColor.Fprintf(n.w, "! %s\n", message)
}

func (n *consoleNotifier) Clear() {}
