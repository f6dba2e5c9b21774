package runner

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
	"github.com/jorge-barreto/blogflow/internal/priority"
	"github.com/jorge-barreto/blogflow/internal/ux"
	"github.com/jorge-barreto/blogflow/internal/workflow"
)

// PromptSelector asks on the terminal. An empty answer takes the
// AutoSelector's choice.
type PromptSelector struct {
	in   *lineReader
	out  io.Writer
	auto AutoSelector
}

var _ Selector = (*PromptSelector)(nil)

// NewPromptSelector reads answers from in and writes prompts to out.
func NewPromptSelector(in io.Reader, out io.Writer) *PromptSelector {
	return &PromptSelector{in: newLineReader(in), out: out}
}

// Close stops the input reader.
func (p *PromptSelector) Close() {
	p.in.Stop()
}

func (p *PromptSelector) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprintf(p.out, "  %s%s%s ", ux.Bold, prompt, ux.Reset)
	line, err := p.in.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *PromptSelector) SelectKeywords(ctx context.Context, discovered []pipeline.DiscoveredKeyword) ([]pipeline.DiscoveredKeyword, error) {
	for i, k := range discovered {
		fmt.Fprintf(p.out, "  %s%3d%s  %s\n", ux.Dim, i+1, ux.Reset, k.Keyword)
	}
	answer, err := p.ask(ctx, fmt.Sprintf("Keywords to cluster (numbers, enter for all %d):", len(discovered)))
	if err != nil || answer == "" {
		return discovered, err
	}
	idx, err := parseNumbers(answer, len(discovered))
	if err != nil {
		return nil, err
	}
	out := make([]pipeline.DiscoveredKeyword, 0, len(idx))
	for _, i := range idx {
		out = append(out, discovered[i])
	}
	return out, nil
}

func (p *PromptSelector) ChooseKeywords(ctx context.Context, groups []cluster.Group) ([]cluster.Item, error) {
	var flat []cluster.Item
	for _, g := range groups {
		fmt.Fprintf(p.out, "\n  %s%s%s\n", ux.Bold, g.Name, ux.Reset)
		for _, it := range g.Items {
			flat = append(flat, it)
			fmt.Fprintf(p.out, "  %s%3d%s  %s\n", ux.Dim, len(flat), ux.Reset, it.Keyword)
		}
	}
	answer, err := p.ask(ctx, fmt.Sprintf("Pick %d keywords in priority order (enter for top by volume):", priority.Required))
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return p.auto.ChooseKeywords(ctx, groups)
	}
	idx, err := parseNumbers(answer, len(flat))
	if err != nil {
		return nil, err
	}
	out := make([]cluster.Item, 0, len(idx))
	for _, i := range idx {
		out = append(out, flat[i])
	}
	return out, nil
}

func (p *PromptSelector) ChooseTitle(ctx context.Context, options []pipeline.TitleOption) (int, error) {
	ux.TitleList(options)
	answer, err := p.ask(ctx, "Title to outline (enter for the first selected):")
	if err != nil {
		return -1, err
	}
	if answer == "" {
		return p.auto.ChooseTitle(ctx, options)
	}
	idx, err := parseNumbers(answer, len(options))
	if err != nil {
		return -1, err
	}
	if len(idx) != 1 {
		return -1, fmt.Errorf("choose exactly one title")
	}
	return idx[0], nil
}

func (p *PromptSelector) EditOutline(ctx context.Context, form workflow.OutlineForm) (workflow.OutlineForm, error) {
	ux.Preview("Outline", form.Outline, 20)
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Title", &form.Title},
		{"Target audience", &form.TargetAudience},
		{"Goal", &form.Goal},
	} {
		if err := p.edit(ctx, f.label, f.dst); err != nil {
			return form, err
		}
	}
	return form, nil
}

func (p *PromptSelector) EditFinal(ctx context.Context, form workflow.FinalForm) (workflow.FinalForm, error) {
	ux.Preview("Article", form.Article, 15)
	if err := p.edit(ctx, "Title", &form.Title); err != nil {
		return form, err
	}
	if err := p.edit(ctx, "Alternate title", &form.AlternateTitle); err != nil {
		return form, err
	}
	return form, nil
}

// edit prompts for a field, keeping the current value on an empty answer.
func (p *PromptSelector) edit(ctx context.Context, label string, dst *string) error {
	answer, err := p.ask(ctx, fmt.Sprintf("%s [%s]:", label, *dst))
	if err != nil {
		return err
	}
	if answer != "" {
		*dst = answer
	}
	return nil
}

// parseNumbers parses a comma- or space-separated list of 1-based
// indexes into 0-based indexes below n.
func parseNumbers(s string, n int) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int, 0, len(fields))
	seen := make(map[int]bool, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", f)
		}
		if v < 1 || v > n {
			return nil, fmt.Errorf("%d is out of range 1..%d", v, n)
		}
		if seen[v] {
			return nil, fmt.Errorf("%d given twice", v)
		}
		seen[v] = true
		out = append(out, v-1)
	}
	return out, nil
}
