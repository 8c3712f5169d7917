// Package subtitle holds the pipeline data model: recognizer words, subtitle
// lines with their timing analysis fields, and chunk grouping helpers, plus
// SRT parsing and the text normalization the aligner depends on.
//
// Derived fields on Line are written exactly once by their owning pass
// (aligner, analyzer, planner, solver, renderer) and never recomputed
// elsewhere; treat them as read-only everywhere else.
package subtitle
