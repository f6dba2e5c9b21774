// Package ux prints human-facing progress to the terminal. Structured logs
// go to stderr through zap; this output is for the person at the keyboard.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

// Out receives all ux output.
var Out io.Writer = os.Stdout

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func printf(format string, args ...any) {
	fmt.Fprintf(Out, format, args...)
}

// StageHeader prints a timestamped stage header.
func StageHeader(index, total int, name, desc string) {
	printf("\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	if desc != "" {
		desc = ": " + desc
	}
	printf("%s[%s]%s  %sStage %d/%d: %s%s%s\n",
		Dim, timestamp(), Reset, Bold, index+1, total, name, desc, Reset)
	printf("%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
}

// StageComplete prints a stage completion message.
func StageComplete(name string, duration time.Duration) {
	m := int(duration.Minutes())
	s := int(duration.Seconds()) % 60
	printf("%s[%s]%s  %s✓ %s complete (%dm %02ds)%s\n",
		Dim, timestamp(), Reset, Green, name, m, s, Reset)
}

// StageFail prints a stage failure message.
func StageFail(name, errMsg string) {
	printf("%s[%s]%s  %s✗ %s failed: %s%s\n",
		Dim, timestamp(), Reset, Red, name, errMsg, Reset)
}

// RetryNotice prints an automatic retry message.
func RetryNotice(name string, attempt, max int) {
	printf("%s[%s]%s  %s↺ Retrying %s (attempt %d/%d)%s\n",
		Dim, timestamp(), Reset, Yellow, name, attempt, max, Reset)
}

// Notice prints a dim informational line.
func Notice(format string, args ...any) {
	printf("  %s%s%s\n", Dim, fmt.Sprintf(format, args...), Reset)
}

// Warn prints a yellow warning line.
func Warn(format string, args ...any) {
	printf("  %s⚠ %s%s\n", Yellow, fmt.Sprintf(format, args...), Reset)
}

// Error prints a red error line.
func Error(msg string) {
	printf("%serror:%s %s\n", Red, Reset, msg)
}

// ClusterTable prints clusters with each keyword's metrics and annotations.
func ClusterTable(groups []cluster.Group) {
	for _, g := range groups {
		printf("\n  %s%s%s %s(%d keywords)%s\n", Bold, g.Name, Reset, Dim, len(g.Items), Reset)
		if g.CoreTopic != "" || g.IntentPattern != "" {
			printf("  %s%s / %s%s\n", Dim, g.CoreTopic, g.IntentPattern, Reset)
		}
		for _, it := range g.Items {
			printf("    %s %-40s %8s %4s  %s\n",
				priorityMark(it), truncate(it.Keyword, 40), intOrDash(it.SearchVolume),
				intOrDash(it.Difficulty), statusLabel(it.Status))
		}
	}
}

// TitleList prints numbered title options.
func TitleList(options []pipeline.TitleOption) {
	for i, o := range options {
		printf("  %s%2d%s  %s%s%s %s[%s]%s\n", Dim, i+1, Reset, Bold, o.Title, Reset, Dim, statusLabel(o.Status), Reset)
		if o.Description != "" {
			printf("      %s\n", truncate(o.Description, 100))
		}
	}
}

// Preview prints a labelled, truncated block of text.
func Preview(label, text string, lines int) {
	printf("\n  %s%s:%s\n", Bold, label, Reset)
	all := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range all {
		if i == lines {
			printf("    %s… %d more lines%s\n", Dim, len(all)-lines, Reset)
			break
		}
		printf("    %s\n", l)
	}
}

// Success prints the final success message.
func Success(articleID int64, blogID int, total time.Duration) {
	printf("\n%s[%s]%s  %s%s══ Article %d persisted (blog %d) in %dm %02ds ══%s\n\n",
		Dim, timestamp(), Reset, Bold, Green, articleID, blogID,
		int(total.Minutes()), int(total.Seconds())%60, Reset)
}

func priorityMark(it cluster.Item) string {
	if it.Prioritized() {
		return fmt.Sprintf("%s#%-2d%s", Green, it.Priority, Reset)
	}
	return "   "
}

func statusLabel(s cluster.Status) string {
	switch s {
	case cluster.StatusSelect:
		return Green + "select" + Reset
	case cluster.StatusReject:
		return Red + "reject" + Reset
	case cluster.StatusKeep:
		return Yellow + "keep" + Reset
	}
	return string(s)
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
