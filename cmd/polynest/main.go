// PolyNest — genetic nesting optimizer for irregular 2D shapes
//
// An offline batch optimizer that places arbitrary simple polygons on as few
// rectangular boards as possible, driven by a genetic search over placement
// order and per-piece rotation.
//
// Build:
//   go build -o polynest ./cmd/polynest
//
// Run:
//   polynest                 # seed derived from clock and pid
//   polynest 42              # fixed master seed, reproducible run
//   polynest --input shapes.json --pdf layout.pdf 42

package main

import "github.com/piwi3910/polynest/cmd/polynest/cmd"

func main() {
	cmd.Execute()
}
