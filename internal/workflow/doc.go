// Package workflow sequences the dubbing pipeline stages over one
// workspace: align, plan, synth, render. Stage outputs checkpoint in
// the store so interrupted runs resume where they stopped, and a file
// lock keeps concurrent runs off the same workspace.
package workflow
