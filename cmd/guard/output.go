package main

import (
	"fmt"
	"io"
	"strings"

	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/codec"
	"mercator-hq/guard/pkg/domains/orders"
	"mercator-hq/guard/pkg/guard"
)

// decisionPrinter writes one decision per line, as rendered text or JSON.
type decisionPrinter struct {
	w        io.Writer
	format   cli.OutputFormat
	renderer guard.Renderer
}

func newDecisionPrinter(w io.Writer, format string, showRule bool) (*decisionPrinter, error) {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return nil, cli.NewConfigError("format", err.Error())
	}
	if f == cli.FormatCSV {
		return nil, cli.NewConfigError("format", "decisions are printed as text or json")
	}
	return &decisionPrinter{
		w:        w,
		format:   f,
		renderer: guard.NewRenderer(string(f), showRule),
	}, nil
}

// Print writes d. Orders are labelled with their ID in text output.
func (p *decisionPrinter) Print(in codec.Input, d guard.Decision) error {
	_, err := fmt.Fprintln(p.w, p.render(in, d))
	return err
}

func (p *decisionPrinter) render(in codec.Input, d guard.Decision) string {
	rendered := p.renderer.Render(d)
	if p.format != cli.FormatText {
		return rendered
	}
	if o, ok := in.Value.(orders.Request); ok {
		return orders.Label(o, rendered)
	}
	return rendered
}

// PrintTrace writes an explained evaluation.
func (p *decisionPrinter) PrintTrace(in codec.Input, trace guard.Trace) error {
	formatter, err := cli.NewFormatter(p.format)
	if err != nil {
		return err
	}
	return formatter.FormatTo(p.w, traceView{
		Rendered: p.render(in, trace.Decision),
		Decision: trace.Decision,
		Steps:    trace.Steps,
	})
}

type traceView struct {
	Rendered string         `json:"rendered"`
	Decision guard.Decision `json:"decision"`
	Steps    []guard.Step   `json:"steps"`
}

func (v traceView) Text() string {
	var sb strings.Builder
	fmt.Fprintln(&sb, v.Rendered)
	fmt.Fprintf(&sb, "rule: %s (%s)\n", v.Decision.RuleID, v.Decision.Outcome)

	width := 0
	for _, s := range v.Steps {
		width = max(width, len(s.RuleID))
	}
	for i, s := range v.Steps {
		fmt.Fprintf(&sb, "  %2d. %-*s  %s\n", i+1, width, s.RuleID, stepStatus(s))
	}
	return sb.String()
}

func stepStatus(s guard.Step) string {
	switch {
	case s.Selected:
		return "selected"
	case !s.ShapeMatched:
		return "shape mismatch"
	case s.Guarded && !s.GuardResult:
		return "guard false"
	default:
		return "skipped"
	}
}
