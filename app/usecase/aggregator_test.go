package usecase_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/usecase"
)

func normEvent(id string, kind entity.EventKind, repo string, at time.Time) entity.NormalizedEvent {
	return entity.NormalizedEvent{ID: id, Kind: kind, Repo: repo, CreatedAt: at}
}

func TestAggregate_NilInputIsAnError(t *testing.T) {
	agg := usecase.NewAggregator(nil)

	report, err := agg.Aggregate("djc", "202410", nil)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, entity.ErrEmptyInput)
}

func TestAggregate_ZeroEventsIsValid(t *testing.T) {
	agg := usecase.NewAggregator(nil)

	report, err := agg.Aggregate("djc", "202410", []entity.NormalizedEvent{})

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "djc", report.User)
	assert.Equal(t, "202410", report.Period)
	assert.Zero(t, report.TotalEvents)
	assert.Empty(t, report.Repos)
}

func TestAggregate_DedupLatestTimestampWins(t *testing.T) {
	agg := usecase.NewAggregator(nil)
	early := entity.NormalizedEvent{
		ID: "abc", Kind: entity.KindPush, Repo: "x/y",
		CreatedAt: t0,
		Detail:    entity.PushDetail{Commits: 2},
	}
	late := entity.NormalizedEvent{
		ID: "abc", Kind: entity.KindPush, Repo: "x/y",
		CreatedAt: t0.Add(time.Hour),
		Detail:    entity.PushDetail{Commits: 3},
	}

	for _, events := range [][]entity.NormalizedEvent{
		{early, late},
		{late, early},
	} {
		report, err := agg.Aggregate("djc", "202410", events)
		require.NoError(t, err)
		require.Len(t, report.Repos, 1)
		require.Len(t, report.Repos[0].Kinds, 1)
		require.Len(t, report.Repos[0].Kinds[0].Events, 1)
		assert.Equal(t, entity.PushDetail{Commits: 3}, report.Repos[0].Kinds[0].Events[0].Detail)
	}
}

func TestAggregate_RepoOrderByCountThenName(t *testing.T) {
	agg := usecase.NewAggregator(nil)
	var events []entity.NormalizedEvent
	for i := 0; i < 5; i++ {
		events = append(events, normEvent(fmt.Sprintf("a%d", i), entity.KindWatch, "org/a", t0))
	}
	for i := 0; i < 9; i++ {
		events = append(events, normEvent(fmt.Sprintf("b%d", i), entity.KindWatch, "org/b", t0))
	}
	for i := 0; i < 5; i++ {
		events = append(events, normEvent(fmt.Sprintf("c%d", i), entity.KindWatch, "org/0tie", t0))
	}

	report, err := agg.Aggregate("djc", "202410", events)
	require.NoError(t, err)
	require.Len(t, report.Repos, 3)

	assert.Equal(t, "org/b", report.Repos[0].Repo)
	// tie on 5 events breaks by name ascending
	assert.Equal(t, "org/0tie", report.Repos[1].Repo)
	assert.Equal(t, "org/a", report.Repos[2].Repo)
}

func TestAggregate_KindGroupsFollowPriorityNotVolume(t *testing.T) {
	agg := usecase.NewAggregator(nil)
	events := []entity.NormalizedEvent{
		normEvent("w1", entity.KindWatch, "x/y", t0),
		normEvent("w2", entity.KindWatch, "x/y", t0.Add(time.Minute)),
		normEvent("w3", entity.KindWatch, "x/y", t0.Add(2*time.Minute)),
		normEvent("p1", entity.KindPush, "x/y", t0),
		{ID: "pr1", Kind: entity.KindPullRequest, Repo: "x/y", CreatedAt: t0,
			Detail: entity.PullRequestDetail{Action: "opened", Title: "Fix bug"}},
	}

	report, err := agg.Aggregate("djc", "202410", events)
	require.NoError(t, err)
	require.Len(t, report.Repos, 1)

	kinds := make([]entity.EventKind, 0, len(report.Repos[0].Kinds))
	for _, g := range report.Repos[0].Kinds {
		kinds = append(kinds, g.Kind)
	}
	assert.Equal(t, []entity.EventKind{entity.KindPullRequest, entity.KindPush, entity.KindWatch}, kinds)
}

func TestAggregate_IntraKindOrderByTimestampThenID(t *testing.T) {
	agg := usecase.NewAggregator(nil)
	events := []entity.NormalizedEvent{
		normEvent("z", entity.KindWatch, "x/y", t0.Add(time.Hour)),
		normEvent("b", entity.KindWatch, "x/y", t0),
		normEvent("a", entity.KindWatch, "x/y", t0),
	}

	report, err := agg.Aggregate("djc", "202410", events)
	require.NoError(t, err)

	got := report.Repos[0].Kinds[0].Events
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "z", got[2].ID)
}

func TestAggregate_GroupingCompleteness(t *testing.T) {
	agg := usecase.NewAggregator(nil)
	events := []entity.NormalizedEvent{
		normEvent("1", entity.KindWatch, "x/y", t0),
		normEvent("1", entity.KindWatch, "x/y", t0.Add(time.Minute)), // dup id
		normEvent("2", entity.KindFork, "x/y", t0),
		normEvent("3", entity.KindOther, "a/b", t0),
	}

	report, err := agg.Aggregate("djc", "202410", events)
	require.NoError(t, err)

	counted := 0
	for _, repo := range report.Repos {
		for _, kind := range repo.Kinds {
			counted += len(kind.Events)
		}
	}
	assert.Equal(t, 3, counted, "one event per distinct id")
	assert.Equal(t, 3, report.TotalEvents)
}

func TestAggregate_CollidingTimestampDuplicatesHaveDefinedWinner(t *testing.T) {
	agg := usecase.NewAggregator(nil)
	small := entity.NormalizedEvent{
		ID: "abc", Kind: entity.KindPush, Repo: "x/y", CreatedAt: t0,
		Detail: entity.PushDetail{Commits: 2},
	}
	big := entity.NormalizedEvent{
		ID: "abc", Kind: entity.KindPush, Repo: "x/y", CreatedAt: t0,
		Detail: entity.PushDetail{Commits: 3},
	}

	first, err := agg.Aggregate("djc", "202410", []entity.NormalizedEvent{small, big})
	require.NoError(t, err)
	second, err := agg.Aggregate("djc", "202410", []entity.NormalizedEvent{big, small})
	require.NoError(t, err)

	assert.Equal(t, first, second, "winner must not depend on input order")

	renderer := usecase.NewRenderer(nil)
	assert.Equal(t, renderer.Render(first), renderer.Render(second))
	assert.Contains(t, renderer.Render(first), "- pushed 3 commit(s)\n")
}

func TestAggregate_DeterministicAcrossInputOrder(t *testing.T) {
	agg := usecase.NewAggregator(nil)
	base := []entity.NormalizedEvent{
		normEvent("1", entity.KindWatch, "x/y", t0),
		normEvent("2", entity.KindPush, "x/y", t0),
		normEvent("3", entity.KindFork, "a/b", t0),
		normEvent("4", entity.KindIssue, "a/b", t0.Add(time.Minute)),
		// colliding timestamps for the same id, with differing payloads
		{ID: "5", Kind: entity.KindPush, Repo: "x/y", CreatedAt: t0,
			Detail: entity.PushDetail{Commits: 1}},
		{ID: "5", Kind: entity.KindPush, Repo: "x/y", CreatedAt: t0,
			Detail: entity.PushDetail{Commits: 4}},
	}

	want, err := agg.Aggregate("djc", "202410", base)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]entity.NormalizedEvent, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := agg.Aggregate("djc", "202410", shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
