// Package pacing chooses the playback speed for dubbing chunks. One
// factor covers a whole chunk so the pace never jumps mid-sentence.
package pacing
