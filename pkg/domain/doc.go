/*
Package domain contains the core models of the flowstep engine.

It defines the capacitated network, the labeling algorithm's state, the
snapshot that pairs the two, and the records used to persist and observe a
run. This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Network: directed edges with capacity and flow, plus the residual lookup.
  - State: labeled and scanned nodes, predecessors, flags, step counter.
  - Snapshot: a deep-copyable (Network, State) pair used for undo history.
  - StepResult: which branch of the step function fired and what it produced.
  - Session: a snapshot plus its history, as stored by the adapters.
*/
package domain
