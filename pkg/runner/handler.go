package runner

import (
	"context"

	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/view"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the session state. res is nil for the initial state.
	Output(ctx context.Context, sess *domain.Session, res *domain.StepResult) error

	// Input reads the next raw command.
	Input(ctx context.Context) (string, error)

	// ShowView presents a rendered graph view.
	ShowView(ctx context.Context, g view.Graph) error

	// SystemOutput presents a meta-message to the user (e.g. "nothing to undo").
	// This is distinct from state rendering.
	SystemOutput(ctx context.Context, msg string) error
}
