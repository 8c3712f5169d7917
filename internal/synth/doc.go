// Package synth generates speech clips for planned lines through an
// external text-to-speech command, with a warmup phase and a bounded
// worker pool for the bulk of the batch.
package synth
