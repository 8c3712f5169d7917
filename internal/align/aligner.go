package align

import (
	"log/slog"
	"sort"
	"strings"

	"dubsync/internal/logging"
	"dubsync/internal/subtitle"
)

// flickerGap is the largest inter-line silence that is visually distracting;
// anything under it gets absorbed into the earlier line.
const flickerGap = 1.0

// wordIndex is the searchable form of the recognizer word stream: one
// normalized concatenation plus the byte offset where each word ends.
type wordIndex struct {
	full  string
	ends  []int
	words []subtitle.Word
}

func buildWordIndex(words []subtitle.Word) wordIndex {
	var sb strings.Builder
	ends := make([]int, len(words))
	for i, word := range words {
		sb.WriteString(subtitle.NormalizeText(word.Text))
		ends[i] = sb.Len()
	}
	return wordIndex{full: sb.String(), ends: ends, words: words}
}

// wordAt returns the index of the word covering byte position pos.
func (idx wordIndex) wordAt(pos int) int {
	return sort.Search(len(idx.ends), func(i int) bool { return idx.ends[i] > pos })
}

// Align assigns each line the interval spanned by its matched words and
// returns a new slice; the input is not modified. Lines whose normalized text
// is empty get a zero interval and do not advance the cursor.
func Align(words []subtitle.Word, lines []subtitle.Line, logger *slog.Logger) ([]subtitle.Line, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "aligner")

	idx := buildWordIndex(words)
	aligned := make([]subtitle.Line, len(lines))
	copy(aligned, lines)

	cursor := 0
	for i := range aligned {
		clean := subtitle.NormalizeText(aligned[i].Source)
		if clean == "" {
			aligned[i].Start, aligned[i].End, aligned[i].Duration = 0, 0, 0
			continue
		}

		offset := strings.Index(idx.full[cursor:], clean)
		if offset < 0 {
			return nil, newMismatchError(aligned[i].Index, clean, idx.full[cursor:])
		}
		matchStart := cursor + offset
		matchEnd := matchStart + len(clean) - 1

		startWord := idx.wordAt(matchStart)
		endWord := idx.wordAt(matchEnd)
		aligned[i].Start = idx.words[startWord].Start
		aligned[i].End = idx.words[endWord].End
		aligned[i].Duration = aligned[i].End - aligned[i].Start
		cursor = matchEnd + 1

		logger.Debug("line matched",
			logging.Int("line", aligned[i].Index),
			logging.Float64("start", aligned[i].Start),
			logging.Float64("end", aligned[i].End),
		)
	}

	removeFlickerGaps(aligned)
	return aligned, nil
}

// removeFlickerGaps extends a line across a sub-second silence so subtitles
// do not blink off and on between consecutive lines.
func removeFlickerGaps(lines []subtitle.Line) {
	for i := 0; i < len(lines)-1; i++ {
		delta := lines[i+1].Start - lines[i].End
		if delta > 0 && delta < flickerGap {
			lines[i].End = lines[i+1].Start
			lines[i].Duration = lines[i].End - lines[i].Start
		}
	}
}
