package estimate

import (
	"strings"
	"unicode"
)

// Per-syllable speaking rates in seconds.
var syllableRates = map[string]float64{
	"en": 0.225,
	"zh": 0.21,
	"ja": 0.21,
	"fr": 0.22,
	"es": 0.22,
	"ko": 0.21,
}

const defaultSyllableRate = 0.22

const (
	spacePause       = 0.15
	punctuationPause = 0.1
)

// Estimator predicts how long a line of text takes to speak. It handles
// mixed-language text by splitting on spaces and punctuation, counting
// syllables per segment with language-specific rules, and charging pause
// time for punctuation and for spaces that join scripts written without
// them.
type Estimator struct{}

func New() *Estimator {
	return &Estimator{}
}

// Estimate returns the predicted spoken duration of text in seconds.
func (e *Estimator) Estimate(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	segments := splitSegments(text)
	total := 0.0
	for i, seg := range segments {
		switch seg.kind {
		case segSpace:
			// A space only costs pause time when it separates scripts
			// that are normally written without spaces. Leading and
			// trailing spaces have only one neighbor and are free.
			if i == 0 || i == len(segments)-1 {
				continue
			}
			prev := DetectLanguage(segments[i-1].text)
			next := DetectLanguage(segments[i+1].text)
			if joinsWithoutSpace(prev) || joinsWithoutSpace(next) {
				total += spacePause
			}
		case segMidPunct, segEndPunct:
			total += punctuationPause
		default:
			lang := DetectLanguage(seg.text)
			rate, ok := syllableRates[lang]
			if !ok {
				rate = defaultSyllableRate
			}
			total += float64(CountSyllables(seg.text, lang)) * rate
		}
	}
	return total
}

// DetectLanguage picks the dominant script of text by scanning for
// characteristic runes. Latin text without accents falls through to "en".
func DetectLanguage(text string) string {
	checks := []struct {
		lang  string
		match func(rune) bool
	}{
		{"zh", isHan},
		{"ja", isKana},
		{"fr", isFrenchAccent},
		{"es", isSpanishMark},
		{"en", isASCIILetter},
		{"ko", isHangul},
	}
	for _, c := range checks {
		if strings.ContainsFunc(text, c.match) {
			return c.lang
		}
	}
	return "en"
}

// CountSyllables counts syllables in text using rules for lang. Unknown
// languages fall back to whitespace-separated word count.
func CountSyllables(text, lang string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	switch lang {
	case "en":
		return countEnglishSyllables(text)
	case "zh":
		n := 0
		for _, r := range text {
			if isHan(r) {
				n++
			}
		}
		return n
	case "ja":
		return countJapaneseSyllables(text)
	case "fr":
		return countVowelClusters(dropFrenchFinalE(strings.ToLower(text)), frenchVowels)
	case "es":
		return countVowelClusters(strings.ToLower(text), spanishVowels)
	case "ko":
		n := 0
		for _, r := range text {
			if r >= 0xac00 && r <= 0xd7af {
				n++
			}
		}
		return n
	}
	return len(strings.Fields(text))
}

// countEnglishSyllables uses the vowel-group heuristic: each run of
// vowels is one syllable, a silent final "e" is discounted, and every
// word contributes at least one.
func countEnglishSyllables(text string) int {
	total := 0
	for _, word := range strings.Fields(text) {
		w := strings.ToLower(word)
		w = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' {
				return r
			}
			return -1
		}, w)
		if w == "" {
			continue
		}
		n := countVowelClusters(w, "aeiouy")
		if n > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
			n--
		}
		if n < 1 {
			n = 1
		}
		total += n
	}
	if total < 1 {
		total = 1
	}
	return total
}

// countJapaneseSyllables counts kana and kanji as one mora each, folding
// contracted sounds (きょ, しゅ, ...) into a single unit and dropping the
// sokuon and long-vowel mark.
func countJapaneseSyllables(text string) int {
	runes := []rune(text)
	n := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == 'っ' || r == 'ー' {
			continue
		}
		if !isKana(r) && !isHan(r) {
			continue
		}
		if i+1 < len(runes) && strings.ContainsRune("きぎしじちぢにひびぴみり", r) &&
			strings.ContainsRune("ょゅゃ", runes[i+1]) {
			i++
		}
		n++
	}
	return n
}

const (
	frenchVowels  = "aeiouyàâéèêëîïôùûüÿœæ"
	spanishVowels = "aeiouáéíóúü"
)

func countVowelClusters(text, vowels string) int {
	n := 0
	inCluster := false
	for _, r := range text {
		if strings.ContainsRune(vowels, r) {
			if !inCluster {
				n++
				inCluster = true
			}
		} else {
			inCluster = false
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// dropFrenchFinalE removes the usually silent "e" at the end of a word.
func dropFrenchFinalE(text string) string {
	runes := []rune(text)
	var out []rune
	for i, r := range runes {
		if r == 'e' {
			atEnd := i+1 >= len(runes) || !isWordRune(runes[i+1])
			if atEnd {
				continue
			}
		}
		out = append(out, r)
	}
	return string(out)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// joinsWithoutSpace reports whether lang writes words without spaces, so
// a space in the source marks an intentional pause.
func joinsWithoutSpace(lang string) bool {
	return lang == "zh" || lang == "ja"
}

func isHan(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

func isKana(r rune) bool {
	return (r >= 0x3040 && r <= 0x309f) || (r >= 0x30a0 && r <= 0x30ff)
}

func isHangul(r rune) bool {
	return (r >= 0xac00 && r <= 0xd7af) || (r >= 0x1100 && r <= 0x11ff)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isFrenchAccent(r rune) bool {
	return strings.ContainsRune("àâçéèêëîïôùûüÿœæ", r)
}

func isSpanishMark(r rune) bool {
	return strings.ContainsRune("áéíóúñ¿¡", r)
}

type segmentKind int

const (
	segText segmentKind = iota
	segSpace
	segMidPunct
	segEndPunct
)

type segment struct {
	kind segmentKind
	text string
}

func classifyRune(r rune) segmentKind {
	switch {
	case unicode.IsSpace(r):
		return segSpace
	case strings.ContainsRune("，；：,;、", r):
		return segMidPunct
	case strings.ContainsRune("。！？.!?", r):
		return segEndPunct
	}
	return segText
}

// splitSegments groups consecutive runes of the same class, so text,
// spaces, and punctuation come out as separate segments in order.
func splitSegments(text string) []segment {
	var segs []segment
	var cur strings.Builder
	curKind := segText
	for i, r := range text {
		k := classifyRune(r)
		if i > 0 && k != curKind {
			segs = append(segs, segment{kind: curKind, text: cur.String()})
			cur.Reset()
		}
		curKind = k
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		segs = append(segs, segment{kind: curKind, text: cur.String()})
	}
	return segs
}
