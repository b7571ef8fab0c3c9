package usecase_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/usecase"
)

func renderPipeline(t *testing.T, user, period string, rows []entity.RawEventRow) string {
	t.Helper()
	agg := usecase.NewAggregator(nil)
	report, err := agg.Aggregate(user, period, usecase.NormalizeEvents(rows))
	require.NoError(t, err)
	return usecase.NewRenderer(nil).Render(report)
}

func TestRender_NoActivity(t *testing.T) {
	out := renderPipeline(t, "djc", "202410", []entity.RawEventRow{})

	title := "Activity report for djc (202410)"
	want := title + "\n" + strings.Repeat("=", len(title)) + "\n\n" +
		"No recorded activity for this period.\n"
	assert.Equal(t, want, out)
	assert.NotEmpty(t, out, "empty period must never render an empty string")
}

func TestRender_DedupAndKindOrderScenario(t *testing.T) {
	t1 := time.Date(2024, 10, 5, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	rows := []entity.RawEventRow{
		{ID: "abc", Type: "PushEvent", Repo: "x/y", CreatedAt: t1,
			Payload: map[string]any{"size": float64(2)}},
		{ID: "abc", Type: "PushEvent", Repo: "x/y", CreatedAt: t2,
			Payload: map[string]any{"size": float64(3)}},
		{ID: "def", Type: "PullRequestEvent", Repo: "x/y", CreatedAt: t1,
			Payload: map[string]any{
				"action":       "opened",
				"pull_request": map[string]any{"title": "Fix bug"},
			}},
	}

	out := renderPipeline(t, "djc", "202410", rows)

	title := "Activity report for djc (202410)"
	want := title + "\n" + strings.Repeat("=", len(title)) + "\n\n" +
		"x/y\n---\n\n" +
		"- opened pull request: Fix bug\n" +
		"- pushed 3 commit(s)\n" +
		"\n"
	assert.Equal(t, want, out)
}

func TestRender_OtherGroupIsSummarized(t *testing.T) {
	rows := []entity.RawEventRow{
		{ID: "1", Type: "GollumEvent", Repo: "x/y", CreatedAt: t0},
		{ID: "2", Type: "MemberEvent", Repo: "x/y", CreatedAt: t0},
	}

	out := renderPipeline(t, "djc", "202410", rows)

	assert.Contains(t, out, "- 2 other event(s)\n")
	assert.NotContains(t, out, "GollumEvent")
}

func TestRender_PerKindTemplates(t *testing.T) {
	rows := []entity.RawEventRow{
		{ID: "1", Type: "IssuesEvent", Repo: "x/y", CreatedAt: t0,
			Payload: map[string]any{"action": "closed", "issue": map[string]any{"title": "Crash"}}},
		{ID: "2", Type: "IssueCommentEvent", Repo: "x/y", CreatedAt: t0,
			Payload: map[string]any{"issue": map[string]any{"title": "Crash"}}},
		{ID: "3", Type: "ReleaseEvent", Repo: "x/y", CreatedAt: t0,
			Payload: map[string]any{"release": map[string]any{"tag_name": "v1.2.0"}}},
		{ID: "4", Type: "CreateEvent", Repo: "x/y", CreatedAt: t0,
			Payload: map[string]any{"ref_type": "tag", "ref": "v1.2.0"}},
		{ID: "5", Type: "ForkEvent", Repo: "x/y", CreatedAt: t0},
		{ID: "6", Type: "WatchEvent", Repo: "x/y", CreatedAt: t0},
	}

	out := renderPipeline(t, "djc", "202410", rows)

	assert.Contains(t, out, "- closed issue: Crash\n")
	assert.Contains(t, out, "- commented on: Crash\n")
	assert.Contains(t, out, "- released v1.2.0\n")
	assert.Contains(t, out, "- created tag v1.2.0\n")
	assert.Contains(t, out, "- forked repository\n")
	assert.Contains(t, out, "- starred repository\n")
}

func TestRender_TemplateOverride(t *testing.T) {
	renderer := usecase.NewRenderer(map[entity.EventKind]usecase.LineFunc{
		entity.KindWatch: func(entity.NormalizedEvent) string { return "left a star" },
	})
	report := &entity.Report{
		User: "djc", Period: "202410", TotalEvents: 1,
		Repos: []entity.RepoGroup{{
			Repo:  "x/y",
			Total: 1,
			Kinds: []entity.KindGroup{{
				Kind:   entity.KindWatch,
				Events: []entity.NormalizedEvent{{ID: "1", Kind: entity.KindWatch, Repo: "x/y"}},
			}},
		}},
	}

	out := renderer.Render(report)
	assert.Contains(t, out, "- left a star\n")
}

func TestRender_UnknownKindFallsBackToKindName(t *testing.T) {
	report := &entity.Report{
		User: "djc", Period: "202410", TotalEvents: 1,
		Repos: []entity.RepoGroup{{
			Repo:  "x/y",
			Total: 1,
			Kinds: []entity.KindGroup{{
				Kind:   entity.EventKind("deploy"),
				Events: []entity.NormalizedEvent{{ID: "1", Kind: entity.EventKind("deploy"), Repo: "x/y"}},
			}},
		}},
	}

	out := usecase.NewRenderer(nil).Render(report)
	assert.Contains(t, out, "- deploy event\n")
}

func TestRender_ByteIdenticalAcrossInputOrder(t *testing.T) {
	var rows []entity.RawEventRow
	for i := 0; i < 30; i++ {
		rows = append(rows, entity.RawEventRow{
			ID:        fmt.Sprintf("ev%02d", i),
			Type:      []string{"PushEvent", "WatchEvent", "ForkEvent"}[i%3],
			Repo:      []string{"x/y", "a/b", "c/d"}[i%3],
			CreatedAt: t0.Add(time.Duration(i%7) * time.Minute),
			Payload:   map[string]any{"size": float64(i)},
		})
	}

	want := renderPipeline(t, "djc", "202410", rows)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := make([]entity.RawEventRow, len(rows))
		copy(shuffled, rows)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, renderPipeline(t, "djc", "202410", shuffled))
	}
}
