package repository

import "context"

// ArchiveDownloader streams the decoded documents of one hourly archive
// partition into out. The channel is not closed by the implementation.
type ArchiveDownloader interface {
	FetchAndParse(ctx context.Context, url string, out chan<- map[string]any) error
}
