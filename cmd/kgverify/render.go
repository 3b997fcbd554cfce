package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/core/session"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

var outcomeColors = map[model.Outcome]lipgloss.Color{
	model.OutcomeExists:    lipgloss.Color("#4CAF50"),
	model.OutcomePossible:  lipgloss.Color("#FFC107"),
	model.OutcomeConflicts: lipgloss.Color("#FF6B6B"),
	model.OutcomeNone:      lipgloss.Color("#AAAAAA"),
}

var outcomeTitles = map[model.Outcome]string{
	model.OutcomeExists:    "Exists in the knowledge graph",
	model.OutcomePossible:  "Possibly exists",
	model.OutcomeConflicts: "Conflicts with the knowledge graph",
	model.OutcomeNone:      "Unknown to the knowledge graph",
}

// renderView draws one box per outcome bucket followed by the resolutions
// made so far.
func renderView(v session.View) string {
	var sections []string
	if v.Article != "" {
		sections = append(sections, headerStyle.Render("Article · "+v.Article))
	}
	for _, o := range model.Outcomes() {
		sections = append(sections, renderBucket(o, v.Buckets[o]))
	}
	if len(v.Resolved) > 0 {
		lines := make([]string, 0, len(v.Resolved))
		for _, res := range v.Resolved {
			lines = append(lines, fmt.Sprintf("%s  %s", res.Triple, mutedStyle.Render(res.Message())))
		}
		sections = append(sections, boxStyle.Render(headerStyle.Render("Resolved")+"\n"+strings.Join(lines, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderBucket(o model.Outcome, rows []session.Row) string {
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(outcomeColors[o]).
		Render(fmt.Sprintf("%s (%d)", outcomeTitles[o], len(rows)))
	if len(rows) == 0 {
		return boxStyle.Render(head + "\n" + mutedStyle.Render("nothing here"))
	}

	var b strings.Builder
	b.WriteString(head)
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%s %s", r.Triple, mutedStyle.Render(r.Key))
		if r.Sentence != "" {
			fmt.Fprintf(&b, "\n  %s", mutedStyle.Render("“"+r.Sentence+"”"))
		}
		for _, ev := range r.Evidence {
			fmt.Fprintf(&b, "\n  ↳ %s", ev.Triple)
		}
		switch {
		case len(r.Escalation) > 0:
			fmt.Fprintf(&b, "\n  %s", errorStyle.Render(fmt.Sprintf("conflicts with %d existing triple(s)", len(r.Escalation))))
		case r.Escalated:
			fmt.Fprintf(&b, "\n  %s", errorStyle.Render("refused by the knowledge graph"))
		}
		if r.LastError != "" {
			fmt.Fprintf(&b, "\n  %s", errorStyle.Render(r.LastError))
		}
	}
	return boxStyle.Render(b.String())
}

func renderConflicts(conflicts []model.Triple) string {
	return renderTriples("Conflicting triples in the knowledge graph", conflicts)
}

func renderTriples(title string, triples []model.Triple) string {
	head := headerStyle.Render(fmt.Sprintf("%s (%d)", title, len(triples)))
	if len(triples) == 0 {
		return boxStyle.Render(head + "\n" + mutedStyle.Render("nothing here"))
	}
	lines := make([]string, 0, len(triples))
	for _, t := range triples {
		lines = append(lines, t.String())
	}
	return boxStyle.Render(head + "\n" + strings.Join(lines, "\n"))
}

func renderArticles(articles []model.Article) string {
	head := headerStyle.Render(fmt.Sprintf("Extracted articles (%d)", len(articles)))
	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		headline := a.Headlines
		if headline == "" {
			headline = "(no headline)"
		}
		lines = append(lines, fmt.Sprintf("%s  %s\n  %s",
			mutedStyle.Render(a.Published().Format("2006-01-02")), headline, mutedStyle.Render(a.Source)))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{head}, lines...)...))
}

func renderJob(job model.UpdateJob) string {
	status := string(job.Status)
	switch job.Status {
	case model.JobDone:
		status = successStyle.Render(status)
	case model.JobTimedOut:
		status = errorStyle.Render(status)
	}
	out := fmt.Sprintf("update %s: %s after %d poll(s)", job.ID, status, job.Polls)
	if job.Error != "" {
		out += "\n" + errorStyle.Render(job.Error)
	}
	return out
}
