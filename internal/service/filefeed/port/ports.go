package port

import (
	"context"

	"wmslink/internal/service/filefeed/domain"
)

// BlobFetcher returns the raw text content of a remote blob addressed by
// container and path.
type BlobFetcher interface {
	Fetch(ctx context.Context, container, path string) (string, error)
}

// IncomingLogRepository appends audit records for raw feed payloads and
// marks their final outcome.
type IncomingLogRepository interface {
	Append(ctx context.Context, rec *domain.IncomingLog) error
	MarkFailed(ctx context.Context, id string, message string) error
}
