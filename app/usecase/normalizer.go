package usecase

import (
	"github.com/okorolev/gh-activity-report/app/domain/entity"
)

// archive type tag -> internal kind
var kindForType = map[string]entity.EventKind{
	"PushEvent":         entity.KindPush,
	"PullRequestEvent":  entity.KindPullRequest,
	"IssuesEvent":       entity.KindIssue,
	"IssueCommentEvent": entity.KindIssueComment,
	"ReleaseEvent":      entity.KindRelease,
	"CreateEvent":       entity.KindCreate,
	"ForkEvent":         entity.KindFork,
	"WatchEvent":        entity.KindWatch,
}

// NormalizeEvents converts raw warehouse rows into the uniform event
// representation. A row with an unknown type tag, or a known type whose
// payload is missing a required field, becomes a bare KindOther event.
// One bad row never fails the batch.
func NormalizeEvents(rows []entity.RawEventRow) []entity.NormalizedEvent {
	if rows == nil {
		return nil
	}
	out := make([]entity.NormalizedEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeRow(row))
	}
	return out
}

func normalizeRow(row entity.RawEventRow) entity.NormalizedEvent {
	ev := entity.NormalizedEvent{
		ID:        row.ID,
		Kind:      entity.KindOther,
		Repo:      row.Repo,
		CreatedAt: row.CreatedAt,
	}

	kind, ok := kindForType[row.Type]
	if !ok {
		return ev
	}

	detail, ok := extractDetail(kind, row.Payload)
	if !ok {
		// required payload field missing or mistyped: downgrade this one
		// event instead of failing the run
		return ev
	}

	ev.Kind = kind
	ev.Detail = detail
	return ev
}

func extractDetail(kind entity.EventKind, payload map[string]any) (entity.Detail, bool) {
	switch kind {
	case entity.KindPush:
		commits, ok := intField(payload, "size")
		if !ok {
			if commits, ok = intField(payload, "distinct_size"); !ok {
				return nil, false
			}
		}
		return entity.PushDetail{
			Commits:  commits,
			Messages: commitMessages(payload),
		}, true

	case entity.KindPullRequest:
		action, ok := stringField(payload, "action")
		if !ok {
			return nil, false
		}
		pr, ok := mapField(payload, "pull_request")
		if !ok {
			return nil, false
		}
		title, ok := stringField(pr, "title")
		if !ok {
			return nil, false
		}
		return entity.PullRequestDetail{Action: action, Title: title}, true

	case entity.KindIssue:
		action, ok := stringField(payload, "action")
		if !ok {
			return nil, false
		}
		issue, ok := mapField(payload, "issue")
		if !ok {
			return nil, false
		}
		title, ok := stringField(issue, "title")
		if !ok {
			return nil, false
		}
		return entity.IssueDetail{Action: action, Title: title}, true

	case entity.KindIssueComment:
		issue, ok := mapField(payload, "issue")
		if !ok {
			return nil, false
		}
		title, ok := stringField(issue, "title")
		if !ok {
			return nil, false
		}
		return entity.IssueCommentDetail{Title: title}, true

	case entity.KindRelease:
		release, ok := mapField(payload, "release")
		if !ok {
			return nil, false
		}
		tag, ok := stringField(release, "tag_name")
		if !ok {
			return nil, false
		}
		return entity.ReleaseDetail{Tag: tag}, true

	case entity.KindCreate:
		refType, ok := stringField(payload, "ref_type")
		if !ok {
			return nil, false
		}
		// ref is null for repository creation events
		ref, _ := stringField(payload, "ref")
		return entity.CreateDetail{RefType: refType, Ref: ref}, true

	case entity.KindFork, entity.KindWatch:
		// nothing to render beyond the kind itself
		return nil, true
	}
	return nil, false
}

func stringField(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func mapField(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	sub, ok := m[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return sub, true
}

// intField tolerates every numeric type the row may arrive with: float64
// from archive JSON, int32/int64 from BSON decoding.
func intField(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func commitMessages(payload map[string]any) []string {
	commits, ok := payload["commits"].([]any)
	if !ok {
		return nil
	}
	var messages []string
	for _, c := range commits {
		commit, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if msg, ok := commit["message"].(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
