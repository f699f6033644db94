package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/mswasm-runtime/config"
	"github.com/wippyai/mswasm-runtime/hostcall"
	"github.com/wippyai/mswasm-runtime/programs"
	"github.com/wippyai/mswasm-runtime/runtime"
	"github.com/wippyai/mswasm-runtime/segment"
	"github.com/wippyai/mswasm-runtime/tag"
)

// maxMapWords caps the tag map drawn per segment.
const maxMapWords = 64

var (
	dataWordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	handleWordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))
)

// outcome is the result of running one program.
type outcome struct {
	inst   *runtime.Instance
	err    error
	stdout string
	code   uint32
	exited bool
}

// execute runs a program's entry point on a fresh instance. The instance is
// returned open so callers can inspect memory; the caller closes it.
func execute(ctx context.Context, cfg *config.Config, name string, args []string, snapshot []byte, stdout io.Writer) (*outcome, error) {
	p, err := programs.Lookup(name)
	if err != nil {
		return nil, err
	}

	var captured bytes.Buffer
	out := io.Writer(&captured)
	if stdout != nil {
		out = io.MultiWriter(&captured, stdout)
	}

	hc := cfg.HostConfig(name, nil, out, out)
	hc.Args = append(hc.Args, args...)
	host, err := hostcall.New(ctx, hc)
	if err != nil {
		return nil, fmt.Errorf("create host: %w", err)
	}

	rc := cfg.RuntimeConfig()
	rc.Host = host
	rc.Snapshot = snapshot
	inst, err := runtime.New(rc)
	if err != nil {
		_ = host.Close(ctx)
		return nil, fmt.Errorf("create instance: %w", err)
	}
	if err := p.Install(inst); err != nil {
		_ = inst.Close(ctx)
		return nil, fmt.Errorf("install %s: %w", name, err)
	}

	_, err = inst.Invoke(ctx, programs.EntryPoint)
	code, exited := runtime.ExitCode(err)
	res := &outcome{inst: inst, code: code, exited: exited}
	if !exited {
		res.err = err
	}
	res.stdout = captured.String()
	return res, nil
}

// renderSegments draws one line per live segment with its tag map.
func renderSegments(store *segment.Store) string {
	var b strings.Builder
	st := store.Stats()

	b.WriteString(headerStyle.Render(fmt.Sprintf("segments: %d live, %d freed, %d bytes live (peak %d), tags %s",
		st.LiveCount, st.FreeCount, st.LiveBytes, st.PeakLiveBytes, store.Strategy())))
	b.WriteString("\n")

	store.Each(func(seg *segment.Segment) bool {
		fmt.Fprintf(&b, "  #%-4d %6d B  ", seg.ID(), seg.Len())
		b.WriteString(tagMap(seg))
		b.WriteString("\n")
		return true
	})
	return b.String()
}

func tagMap(seg *segment.Segment) string {
	tags := seg.Tags()
	if tags.Len() == 0 {
		return dataWordStyle.Render("(untagged)")
	}

	var b strings.Builder
	n := min(tags.Len(), maxMapWords)
	for w := 0; w < n; w++ {
		t, err := tags.Get(uint32(w))
		switch {
		case err != nil:
			b.WriteString("?")
		case t == tag.Handle:
			b.WriteString(handleWordStyle.Render("H"))
		default:
			b.WriteString(dataWordStyle.Render("."))
		}
	}
	if tags.Len() > n {
		fmt.Fprintf(&b, " +%d words", tags.Len()-n)
	}
	return b.String()
}
