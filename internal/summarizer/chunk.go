package summarizer

import "strings"

// DefaultMaxWords bounds the size of one summarization chunk
const DefaultMaxWords = 800

// Chunk splits text on whitespace into pieces of at most maxWords words.
// Word order is preserved and only the last chunk may be shorter.
func Chunk(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	words := strings.Fields(text)
	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for i := 0; i < len(words); i += maxWords {
		end := min(i+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
