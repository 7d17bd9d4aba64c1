package driven

import (
	"context"

	"github.com/ocrfin/prnudge/internal/domain/model"
)

// HostClient defines the driven port for reading pull request data from the
// source host. The notifier is read-only: it never writes back to the host.
type HostClient interface {
	// FetchOpenPullRequests lists all currently open pull requests for the
	// repository given as "owner/repo".
	FetchOpenPullRequests(ctx context.Context, repoFullName string) ([]model.PullRequest, error)
	// FetchChangedFiles returns the paths of all files changed in a pull request.
	FetchChangedFiles(ctx context.Context, repoFullName string, prNumber int) ([]string, error)
}
