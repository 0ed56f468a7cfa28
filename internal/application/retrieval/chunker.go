package retrieval

import "strings"

// ChunkText splits text into overlapping word windows of at most size words,
// advancing size-overlap words per chunk.  The split is deterministic: the
// same text with the same knobs always yields the same chunks, which keeps
// regenerated embeddings stable.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 180
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
