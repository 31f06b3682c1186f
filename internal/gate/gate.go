// Package gate implements the password gate in front of protected folders
// and files. It owns the prompt/verify/retry loop so that neither the state
// container nor the CLI commands need to know how entry is decided.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/byflash/drive-cli/internal/api"
	"github.com/byflash/drive-cli/internal/grouping"
	"github.com/byflash/drive-cli/internal/models"
	"github.com/byflash/drive-cli/internal/state"
)

// Status describes where an entry attempt ended up.
type Status string

const (
	StatusGranted   Status = "granted"
	StatusDenied    Status = "denied"
	StatusCancelled Status = "cancelled"
)

// maxAttempts bounds the prompt/verify loop for a single entry attempt.
const maxAttempts = 3

// ErrCancelled is returned by a Prompter when the user aborts the prompt.
// A cancelled entry attempt leaves the navigation state untouched.
var ErrCancelled = errors.New("password prompt cancelled")

// Verifier checks a candidate folder password against the server.
type Verifier interface {
	CheckGroupPassword(ctx context.Context, groupID, password string) error
}

// Prompter collects a password from the user. Implementations must return
// ErrCancelled when the user backs out rather than inventing a password.
type Prompter interface {
	PromptPassword(ctx context.Context, label string) (string, error)
}

// Gate coordinates prompting, server-side verification, and the per-session
// password cache held by the state container.
type Gate struct {
	verifier Verifier
	prompter Prompter
	state    *state.DriveState
}

// New builds a gate over the given verifier, prompter, and state.
func New(verifier Verifier, prompter Prompter, st *state.DriveState) *Gate {
	return &Gate{verifier: verifier, prompter: prompter, state: st}
}

// EnterFolder attempts to navigate into the folder. Unprotected folders are
// entered directly. Protected folders run the prompt/verify loop; a correct
// password is cached for the session and entry proceeds. Cancelling at the
// prompt returns StatusCancelled and the current folder does not change.
func (g *Gate) EnterFolder(ctx context.Context, folder grouping.FolderSummary) (Status, error) {
	if !folder.Protected {
		g.state.EnterFolder(folder.GroupID)
		return StatusGranted, nil
	}

	if pw, ok := g.state.CachedPassword(folder.GroupID); ok {
		if err := g.verifier.CheckGroupPassword(ctx, folder.GroupID, pw); err == nil {
			g.state.EnterFolder(folder.GroupID)
			return StatusGranted, nil
		}
		// Stale cache entry, fall through to a fresh prompt.
	}

	label := fmt.Sprintf("Password for folder %q", folder.Name)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pw, err := g.prompter.PromptPassword(ctx, label)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return StatusCancelled, nil
			}
			return StatusDenied, err
		}

		err = g.verifier.CheckGroupPassword(ctx, folder.GroupID, pw)
		switch {
		case err == nil:
			g.state.CachePassword(folder.GroupID, pw)
			g.state.EnterFolder(folder.GroupID)
			return StatusGranted, nil
		case errors.Is(err, api.ErrInvalidPassword):
			label = fmt.Sprintf("Wrong password, try again for folder %q", folder.Name)
		default:
			return StatusDenied, err
		}
	}
	return StatusDenied, api.ErrInvalidPassword
}

// FilePassword resolves the password needed to download a protected file.
// Unprotected files need none. For protected files the session cache for the
// file's folder is consulted first; otherwise the user is prompted once and
// the server verifies at download time. forcePrompt skips the cache, used
// when a previous download attempt came back with a password error.
func (g *Gate) FilePassword(ctx context.Context, rec models.FileRecord, forcePrompt bool) (string, error) {
	if !rec.HasPassword {
		return "", nil
	}
	if !forcePrompt && rec.GroupID != "" {
		if pw, ok := g.state.CachedPassword(rec.GroupID); ok {
			return pw, nil
		}
	}
	pw, err := g.prompter.PromptPassword(ctx, fmt.Sprintf("Password for %q", rec.Name))
	if err != nil {
		return "", err
	}
	return pw, nil
}
