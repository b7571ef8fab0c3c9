package entity

// KindGroup holds the deduplicated events of one kind inside one
// repository, ordered by (timestamp, id) ascending.
type KindGroup struct {
	Kind   EventKind
	Events []NormalizedEvent
}

// RepoGroup holds at most one KindGroup per kind. Kind groups are ordered
// by the report's kind priority table, not by arrival order.
type RepoGroup struct {
	Repo  string
	Kinds []KindGroup
	Total int
}

// Report is the aggregated activity of one user over one period. Repo
// groups are ordered by total event count descending, repository name
// ascending on ties.
type Report struct {
	User        string
	Period      string
	TotalEvents int
	Repos       []RepoGroup
}

// DefaultKindPriority orders kind groups inside a repo section: review and
// issue activity first, stars and forks last. Held as data so callers can
// swap in their own ordering.
var DefaultKindPriority = []EventKind{
	KindPullRequest,
	KindIssue,
	KindIssueComment,
	KindPush,
	KindRelease,
	KindCreate,
	KindFork,
	KindWatch,
	KindOther,
}
