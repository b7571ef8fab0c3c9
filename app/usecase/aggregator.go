package usecase

import (
	"fmt"
	"sort"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
)

// Aggregator turns an unordered, possibly duplicated event sequence into
// the fully ordered report tree. Kind ordering is a data table so the
// priority can be swapped without touching the grouping logic.
type Aggregator struct {
	priority map[entity.EventKind]int
}

// NewAggregator builds an aggregator with the given kind ordering. A nil
// order falls back to entity.DefaultKindPriority. Kinds absent from the
// order sort last.
func NewAggregator(order []entity.EventKind) *Aggregator {
	if order == nil {
		order = entity.DefaultKindPriority
	}
	priority := make(map[entity.EventKind]int, len(order))
	for i, k := range order {
		priority[k] = i
	}
	return &Aggregator{priority: priority}
}

// Aggregate deduplicates events by id (latest timestamp wins), groups
// them by repository and kind, and orders every level deterministically.
// A nil event sequence is the only failure; zero events is a valid empty
// report.
func (a *Aggregator) Aggregate(user, period string, events []entity.NormalizedEvent) (*entity.Report, error) {
	if events == nil {
		return nil, entity.ErrEmptyInput
	}

	deduped := dedupe(events)

	byRepo := make(map[string]map[entity.EventKind][]entity.NormalizedEvent)
	for _, ev := range deduped {
		kinds, ok := byRepo[ev.Repo]
		if !ok {
			kinds = make(map[entity.EventKind][]entity.NormalizedEvent)
			byRepo[ev.Repo] = kinds
		}
		kinds[ev.Kind] = append(kinds[ev.Kind], ev)
	}

	report := &entity.Report{
		User:        user,
		Period:      period,
		TotalEvents: len(deduped),
		Repos:       make([]entity.RepoGroup, 0, len(byRepo)),
	}

	for repo, kinds := range byRepo {
		group := entity.RepoGroup{
			Repo:  repo,
			Kinds: make([]entity.KindGroup, 0, len(kinds)),
		}
		for kind, evs := range kinds {
			sort.Slice(evs, func(i, j int) bool {
				if !evs[i].CreatedAt.Equal(evs[j].CreatedAt) {
					return evs[i].CreatedAt.Before(evs[j].CreatedAt)
				}
				return evs[i].ID < evs[j].ID
			})
			group.Kinds = append(group.Kinds, entity.KindGroup{Kind: kind, Events: evs})
			group.Total += len(evs)
		}
		sort.Slice(group.Kinds, func(i, j int) bool {
			return a.kindRank(group.Kinds[i].Kind) < a.kindRank(group.Kinds[j].Kind)
		})
		report.Repos = append(report.Repos, group)
	}

	sort.Slice(report.Repos, func(i, j int) bool {
		if report.Repos[i].Total != report.Repos[j].Total {
			return report.Repos[i].Total > report.Repos[j].Total
		}
		return report.Repos[i].Repo < report.Repos[j].Repo
	})

	return report, nil
}

func (a *Aggregator) kindRank(kind entity.EventKind) int {
	if rank, ok := a.priority[kind]; ok {
		return rank
	}
	return len(a.priority)
}

// dedupe keeps one event per id, preferring the latest timestamp. The
// archive emits the same logical event more than once across query
// partitions. Events are pre-sorted with a total order over their full
// content so the winner does not depend on input order even when both
// timestamps and (kind, repo) collide.
func dedupe(events []entity.NormalizedEvent) []entity.NormalizedEvent {
	sorted := make([]entity.NormalizedEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ID != sorted[j].ID {
			return sorted[i].ID < sorted[j].ID
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		if sorted[i].Repo != sorted[j].Repo {
			return sorted[i].Repo < sorted[j].Repo
		}
		return detailKey(sorted[i].Detail) < detailKey(sorted[j].Detail)
	})

	out := sorted[:0]
	for _, ev := range sorted {
		if len(out) > 0 && out[len(out)-1].ID == ev.ID {
			// same id: ev sorts later, so it wins
			out[len(out)-1] = ev
			continue
		}
		out = append(out, ev)
	}
	return out
}

// detailKey gives the kind-specific detail a deterministic total order.
// All detail types are flat value structs, so their Go-syntax
// representation is a stable comparison key.
func detailKey(d entity.Detail) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%#v", d)
}
