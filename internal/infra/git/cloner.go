package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// Cloner materializes a remote repository's file tree into a destination
// directory. Any credential is expected to be embedded in the URL authority
// already (see the scm package).
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

// CloneError marks a transport or authentication failure during
// acquisition. The pipeline treats it as fatal to the session.
type CloneError struct {
	Err error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("failed to clone repository: %v", e.Err)
}

func (e *CloneError) Unwrap() error {
	return e.Err
}

// IsCloneError reports whether err is an acquisition failure.
func IsCloneError(err error) bool {
	var ce *CloneError
	return errors.As(err, &ce)
}

// GoGitCloner clones over HTTP(S) using go-git. It is stateless and safe
// for concurrent use.
type GoGitCloner struct {
	// Depth limits history depth; 1 gives a shallow clone, which is all a
	// file-content scan needs. Zero means full history.
	Depth int
}

// NewGoGitCloner returns a cloner with a shallow-clone default.
func NewGoGitCloner() *GoGitCloner {
	return &GoGitCloner{Depth: 1}
}

// Clone fetches the repository at url into dest, checking out HEAD of the
// remote's default branch.
func (c *GoGitCloner) Clone(ctx context.Context, url, dest string) error {
	opts := &gogit.CloneOptions{
		URL:          url,
		Depth:        c.Depth,
		SingleBranch: true,
	}

	if _, err := gogit.PlainCloneContext(ctx, dest, false, opts); err != nil {
		return &CloneError{Err: err}
	}
	return nil
}
