package subtitle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LoadWords reads the recognizer word list from path. The file is a JSON
// array of word objects with text and start/end seconds.
func LoadWords(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	var words []Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("decode words %s: %w", path, err)
	}
	if len(words) == 0 {
		return nil, errors.New("words file contains no entries")
	}
	for i, w := range words {
		if w.End < w.Start {
			return nil, fmt.Errorf("word %d (%q) ends before it starts", i, w.Text)
		}
	}
	return words, nil
}
