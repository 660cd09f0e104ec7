package textdiff

import (
	"strings"
	"unicode"
)

// Stats - пословная разница двух версий текста
type Stats struct {
	Similarity   float64 // 0..1, доля общих слов
	WordsAdded   int
	WordsRemoved int
}

// Compare считает мультимножественное пересечение слов двух текстов.
// Порядок слов не учитывается: для оценки глубины правки этого достаточно.
func Compare(before, after string) Stats {
	beforeWords := words(before)
	afterWords := words(after)

	if len(beforeWords) == 0 && len(afterWords) == 0 {
		return Stats{Similarity: 1}
	}

	beforeCounts := counts(beforeWords)
	afterCounts := counts(afterWords)

	common := 0
	for w, n := range beforeCounts {
		if m := afterCounts[w]; m > 0 {
			if m < n {
				common += m
			} else {
				common += n
			}
		}
	}

	return Stats{
		Similarity:   2 * float64(common) / float64(len(beforeWords)+len(afterWords)),
		WordsAdded:   len(afterWords) - common,
		WordsRemoved: len(beforeWords) - common,
	}
}

func words(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, unicode.IsPunct)
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func counts(ws []string) map[string]int {
	m := make(map[string]int, len(ws))
	for _, w := range ws {
		m[w]++
	}
	return m
}
