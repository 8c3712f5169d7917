// Package timing analyzes aligned subtitle lines against the audio
// timeline and plans dubbing chunks. Analysis measures the gap after
// each line, how much of it the line may borrow, and whether the
// estimated spoken duration fits. Planning marks chunk boundaries,
// merging lines that speak too fast for their slots with their
// neighbors.
package timing
