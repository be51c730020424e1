package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowstep/pkg/view"
)

// Command is a parsed runner instruction.
type Command struct {
	Op Op
	// View is set for OpView.
	View view.Kind
}

// Op enumerates the runner operations.
type Op string

const (
	OpNext  Op = "next"
	OpPrev  Op = "prev"
	OpSolve Op = "solve"
	OpView  Op = "view"
	OpQuit  Op = "quit"
)

// ParseCommand maps user input to a Command. An empty line means next.
// "v" shows the residual network; "v network" shows the forward one.
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{Op: OpNext}, nil
	}

	switch fields[0] {
	case "n", "next", "step":
		return Command{Op: OpNext}, nil
	case "p", "prev", "undo", "back":
		return Command{Op: OpPrev}, nil
	case "s", "solve":
		return Command{Op: OpSolve}, nil
	case "q", "quit", "exit":
		return Command{Op: OpQuit}, nil
	case "v", "view":
		kind := view.KindResidual
		if len(fields) > 1 {
			k, ok := view.ParseKind(fields[1])
			if !ok {
				return Command{}, fmt.Errorf("unknown view %q", fields[1])
			}
			kind = k
		}
		return Command{Op: OpView, View: kind}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", fields[0])
}

const helpText = "commands: [enter]/n next, p undo, s solve, v [network|residual] view, q quit"
