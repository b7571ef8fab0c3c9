package usecase

import (
	"fmt"
	"strings"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
)

// LineFunc renders the bullet line for one event of a given kind.
type LineFunc func(ev entity.NormalizedEvent) string

// Renderer walks a report tree and emits reStructuredText: a title
// underlined with '=', one section per repository underlined with '-',
// and '-' bullets for the events. Templates are a data table keyed by
// kind so new kinds only need a new entry, not new rendering logic.
type Renderer struct {
	templates map[entity.EventKind]LineFunc
}

// NewRenderer builds a renderer with the default per-kind templates.
// Entries in overrides replace the defaults for their kind.
func NewRenderer(overrides map[entity.EventKind]LineFunc) *Renderer {
	templates := make(map[entity.EventKind]LineFunc, len(defaultTemplates))
	for kind, fn := range defaultTemplates {
		templates[kind] = fn
	}
	for kind, fn := range overrides {
		templates[kind] = fn
	}
	return &Renderer{templates: templates}
}

// Render never fails on a report produced by the aggregator. I/O is the
// caller's job; this returns the full document as one value.
func (r *Renderer) Render(report *entity.Report) string {
	var b strings.Builder

	title := fmt.Sprintf("Activity report for %s (%s)", report.User, report.Period)
	writeHeader(&b, title, '=')

	if len(report.Repos) == 0 {
		b.WriteString("No recorded activity for this period.\n")
		return b.String()
	}

	for _, repo := range report.Repos {
		writeHeader(&b, repo.Repo, '-')
		for _, group := range repo.Kinds {
			r.writeKindGroup(&b, group)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) writeKindGroup(b *strings.Builder, group entity.KindGroup) {
	if group.Kind == entity.KindOther {
		// unrecognized activity is summarized, not itemized
		fmt.Fprintf(b, "- %d other event(s)\n", len(group.Events))
		return
	}
	for _, ev := range group.Events {
		b.WriteString("- ")
		b.WriteString(r.line(ev))
		b.WriteString("\n")
	}
}

func (r *Renderer) line(ev entity.NormalizedEvent) string {
	if fn, ok := r.templates[ev.Kind]; ok {
		return fn(ev)
	}
	return fmt.Sprintf("%s event", ev.Kind)
}

func writeHeader(b *strings.Builder, text string, underline rune) {
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(string(underline), len(text)))
	b.WriteString("\n\n")
}

var defaultTemplates = map[entity.EventKind]LineFunc{
	entity.KindPush: func(ev entity.NormalizedEvent) string {
		d, ok := ev.Detail.(entity.PushDetail)
		if !ok {
			return "pushed commits"
		}
		return fmt.Sprintf("pushed %d commit(s)", d.Commits)
	},
	entity.KindPullRequest: func(ev entity.NormalizedEvent) string {
		d, ok := ev.Detail.(entity.PullRequestDetail)
		if !ok {
			return "pull request activity"
		}
		return fmt.Sprintf("%s pull request: %s", d.Action, d.Title)
	},
	entity.KindIssue: func(ev entity.NormalizedEvent) string {
		d, ok := ev.Detail.(entity.IssueDetail)
		if !ok {
			return "issue activity"
		}
		return fmt.Sprintf("%s issue: %s", d.Action, d.Title)
	},
	entity.KindIssueComment: func(ev entity.NormalizedEvent) string {
		d, ok := ev.Detail.(entity.IssueCommentDetail)
		if !ok {
			return "commented on an issue"
		}
		return fmt.Sprintf("commented on: %s", d.Title)
	},
	entity.KindRelease: func(ev entity.NormalizedEvent) string {
		d, ok := ev.Detail.(entity.ReleaseDetail)
		if !ok {
			return "published a release"
		}
		return fmt.Sprintf("released %s", d.Tag)
	},
	entity.KindCreate: func(ev entity.NormalizedEvent) string {
		d, ok := ev.Detail.(entity.CreateDetail)
		if !ok {
			return "created a ref"
		}
		if d.Ref == "" {
			return fmt.Sprintf("created %s", d.RefType)
		}
		return fmt.Sprintf("created %s %s", d.RefType, d.Ref)
	},
	entity.KindFork: func(entity.NormalizedEvent) string {
		return "forked repository"
	},
	entity.KindWatch: func(entity.NormalizedEvent) string {
		return "starred repository"
	},
}
