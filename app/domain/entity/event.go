package entity

import "time"

// EventKind is the closed set of event categories the report knows how to
// render. Anything the archive emits outside this set collapses into
// KindOther.
type EventKind string

const (
	KindPush         EventKind = "push"
	KindPullRequest  EventKind = "pull_request"
	KindIssue        EventKind = "issue"
	KindIssueComment EventKind = "issue_comment"
	KindRelease      EventKind = "release"
	KindCreate       EventKind = "create"
	KindFork         EventKind = "fork"
	KindWatch        EventKind = "watch"
	KindOther        EventKind = "other"
)

// RawEventRow is one row as returned by the warehouse query: the archive
// document flattened to the fields the engine consumes. Payload shape
// varies by event type.
type RawEventRow struct {
	ID        string         `bson:"id" json:"id"`
	Type      string         `bson:"type" json:"type"`
	Repo      string         `bson:"repo" json:"repo"`
	Actor     string         `bson:"actor" json:"actor"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
	Payload   map[string]any `bson:"payload" json:"payload"`
}

// Detail carries the kind-specific fields of a normalized event. One
// concrete type exists per kind that has anything to render; kinds
// without renderable fields (fork, watch, other) carry a nil Detail.
type Detail interface {
	eventDetail()
}

type PushDetail struct {
	Commits  int
	Messages []string
}

type PullRequestDetail struct {
	Action string
	Title  string
}

type IssueDetail struct {
	Action string
	Title  string
}

type IssueCommentDetail struct {
	Title string
}

type ReleaseDetail struct {
	Tag string
}

type CreateDetail struct {
	RefType string
	Ref     string
}

func (PushDetail) eventDetail()         {}
func (PullRequestDetail) eventDetail()  {}
func (IssueDetail) eventDetail()        {}
func (IssueCommentDetail) eventDetail() {}
func (ReleaseDetail) eventDetail()      {}
func (CreateDetail) eventDetail()       {}

// NormalizedEvent is the uniform internal representation of one archive
// event. Built once by the normalizer, owned by the aggregator afterwards.
type NormalizedEvent struct {
	ID        string
	Kind      EventKind
	Repo      string
	CreatedAt time.Time
	Detail    Detail
}
