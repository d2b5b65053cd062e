package aggregate

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

var defaultStopWords = []string{
	"的", "了", "在", "是", "我", "有", "和", "就", "不", "人",
	"都", "一", "一个", "上", "也", "很", "到", "说", "要", "去",
	"你", "会", "着", "没有", "看", "好", "自己", "这",
	"the", "and", "to", "of", "a", "is", "in", "it", "that", "for",
	"on", "with", "as", "be", "at", "this", "have", "from", "by",
	"was", "are", "or", "an", "I", "but", "not", "you", "he",
	"they", "she", "we",
}

// DefaultStopWords returns a fresh copy of the built-in Chinese and
// English stop word set.
func DefaultStopWords() map[string]struct{} {
	set := make(map[string]struct{}, len(defaultStopWords))
	for _, w := range defaultStopWords {
		set[w] = struct{}{}
	}

	return set
}

// LoadStopWords merges the built-in set with one word per line from
// the given file. An empty path returns just the defaults. On a read
// error the defaults are still returned alongside the error so the
// caller can log and continue.
func LoadStopWords(path string) (map[string]struct{}, error) {
	set := DefaultStopWords()
	if path == "" {
		return set, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return set, fmt.Errorf("failed to open stop words file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			set[word] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return set, fmt.Errorf("failed to read stop words file: %w", err)
	}

	return set, nil
}
