// Package estimate predicts spoken duration for translated lines using
// language-aware syllable counting. The prediction feeds the timing
// analysis that decides whether a line needs merging or speedup.
package estimate
