// Command dubsync drives the dubbing reconciliation pipeline over a
// workspace directory: it aligns subtitle lines to recognizer word
// timings, plans dubbing chunks, synthesizes speech clips, and lays
// them onto the fixed video timeline.
package main
