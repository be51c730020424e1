/*
Package runner drives a flowstep engine from an interactive or structured
command stream.

The runner reads one command at a time (next, prev, solve, view, quit), applies
it to the engine and presents the resulting state through a pluggable handler.
When a store and a session ID are configured, every state change is saved
before the next command is read, so a run can be resumed later.

# Key Components

  - Runner: the command loop.
  - IOHandler: decouples how commands arrive and how state is shown.
  - TextHandler: interactive terminal usage with markdown rendering.
  - JSONHandler: JSON Lines for scripts and other programs.

# Usage

	r := runner.NewRunner(
		runner.WithStore(store),
		runner.WithSessionID("demo"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, eng); err != nil {
		log.Fatal(err)
	}
*/
package runner
