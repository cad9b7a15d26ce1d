// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/interview-prep/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the box's inner width in runes.
func pad(line string) string {
	width := boxWidth - 4
	if utf8.RuneCountInString(line) > width {
		runes := []rune(line)
		line = string(runes[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-utf8.RuneCountInString(line))
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", label)
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
}

// PrintJobProfile outputs a human-readable summary of the analyzed job profile.
func (p *Printer) PrintJobProfile(profile *types.JobProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	company := profile.Company()
	if company == "" {
		company = "(not stated)"
	}
	fmt.Fprintf(&sb, "Company:   %s\n", company)
	fmt.Fprintf(&sb, "Role:      %s\n", profile.JobTitle)
	fmt.Fprintf(&sb, "Seniority: %s\n", profile.SeniorityLevel)
	fmt.Fprintf(&sb, "Domain:    %s\n", profile.Domain)
	if profile.Industry != "" {
		fmt.Fprintf(&sb, "Industry:  %s\n", profile.Industry)
	}
	if profile.JobType != "" {
		fmt.Fprintf(&sb, "Job type:  %s\n", profile.JobType)
	}

	writeList(&sb, "\nTechnical skills", profile.TechnicalSkills)
	writeList(&sb, "\nSoft skills", profile.SoftSkills)
	writeList(&sb, "\nKey skills", profile.KeySkills)

	p.printBox("JOB PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQuestions outputs one category's questions with their source.
func (p *Printer) PrintQuestions(category types.Category, questions []types.GeneratedQuestion) {
	title := fmt.Sprintf("%s QUESTIONS (%d)", strings.ToUpper(strings.ReplaceAll(string(category), "_", " ")), len(questions))
	if len(questions) == 0 {
		p.printBox(title, "(none)")
		return
	}

	var sb strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q.Question)
		meta := []string{string(q.Difficulty), string(q.Source)}
		if q.SkillTag != nil {
			meta = append(meta, "skill: "+*q.SkillTag)
		}
		fmt.Fprintf(&sb, "   [%s]\n", strings.Join(meta, ", "))
		if q.SourceURL != nil {
			fmt.Fprintf(&sb, "   %s\n", *q.SourceURL)
		}
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs the profile followed by every non-empty category.
func (p *Printer) PrintResult(result *types.AggregateResult) {
	if result == nil {
		return
	}
	p.PrintJobProfile(&result.JobAnalysis)
	for _, c := range types.AllCategories {
		p.PrintQuestions(c, result.Questions(c))
	}
	//nolint:errcheck // writing to stdout
	fmt.Fprintf(p.out, "Domain: %s · %d questions\n", result.Domain, result.Total())
}

// PrintStep outputs a one-line pipeline progress entry.
//
//nolint:errcheck // writing to stdout
func (p *Printer) PrintStep(step, message string, count int, elapsed time.Duration) {
	fmt.Fprintf(p.out, "  ✓ %-18s %-40s %3d  %s\n", step, message, count, elapsed.Round(time.Millisecond))
}
