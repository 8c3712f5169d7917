// Package render lays speed-adjusted speech clips onto the fixed video
// timeline, producing the final per-clip start and end times.
package render
