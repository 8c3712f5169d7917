// Package align locates each subtitle line inside the recognizer word stream
// and assigns it a time interval.
//
// The search is a single forward pass over one normalized concatenation of
// every recognizer word: each line must match as an exact substring at or
// after the cursor left by the previous line, so identical input always
// produces identical intervals. A line that cannot be matched is a fatal
// inconsistency between the text and the recognizer output; the error carries
// a best-effort diff so an operator can see where the two diverge.
package align
