package align

import "fmt"

// MismatchError reports a subtitle line that could not be located in the
// recognizer word stream. Found holds the closest region of the unmatched
// remainder, located via longest common substring, purely for diagnosis.
type MismatchError struct {
	Line     int
	Expected string
	Found    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("line %d not found in recognizer stream: expected %q, closest remainder match %q", e.Line, e.Expected, e.Found)
}

func newMismatchError(line int, expected, remainder string) *MismatchError {
	start, length := longestCommonSubstring(expected, remainder)
	found := ""
	if length > 0 {
		end := start + len(expected)
		if end > len(remainder) {
			end = len(remainder)
		}
		found = remainder[start:end]
	}
	return &MismatchError{Line: line, Expected: expected, Found: found}
}

// longestCommonSubstring returns the start offset in b and the length of the
// longest substring shared by a and b. Two-row DP keeps memory bounded on
// long remainders.
func longestCommonSubstring(a, b string) (int, int) {
	if a == "" || b == "" {
		return 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	bestLen, bestEnd := 0, 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestLen {
					bestLen = curr[j]
					bestEnd = j
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return bestEnd - bestLen, bestLen
}
