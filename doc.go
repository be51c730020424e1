/*
Package flowstep is a stepping engine for the labeling (Ford–Fulkerson) maximum
flow algorithm. Every call to Step performs one elementary unit of work, and
every step can be undone.

# Concept

The engine owns a capacitated network and the labeling state that goes with it
(labeled and scanned nodes, predecessors, flags and a step counter). A step
either scans one labeled node, pushes flow along the augmenting path it found,
clears the displayed path, or declares termination. Before every step that
changes something, a deep snapshot is pushed onto the undo history.

Once the engine has terminated, the labeled nodes form the source side of a
minimum cut whose capacity equals the flow leaving the source.

# Key Features

  - Pausable and reversible execution: Step and Undo are the only mutators.
  - Two granularities: scan a node per step, or select it and scan it in two steps.
  - Two labeling modes: full residual labeling (default) or forward edges only.
  - Durable sessions: snapshots and history can be saved to memory, files or Redis.
  - Views: forward and residual graphs for rendering as Mermaid, DOT or SVG.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/flowstep"
		"github.com/aretw0/flowstep/pkg/domain"
	)

	func main() {
		eng, err := flowstep.New(4, []domain.EdgeSpec{
			{From: 0, To: 1, Capacity: 3},
			{From: 1, To: 3, Capacity: 2},
			{From: 0, To: 2, Capacity: 1},
			{From: 2, To: 3, Capacity: 4},
		})
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		for !eng.IsTerminated() {
			res, err := eng.Step(ctx)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(res.Kind)
		}

		cut, capacity := eng.MinCut()
		fmt.Println("flow", eng.FlowValue(), "cut", cut, capacity)
	}
*/
package flowstep
