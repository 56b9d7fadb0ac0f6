package indexing

// SplitText slices text into overlapping windows of chunkSize runes with
// the given overlap. Windows advance by chunkSize-overlap, so consecutive
// chunks share their boundary text and the whole input is covered with no
// gaps. Rune-based because transcripts are mostly Korean.
func SplitText(text string, chunkSize, overlap int) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	step := chunkSize - overlap

	var chunks []string
	for start := 0; ; start += step {
		end := start + chunkSize
		if end >= n {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
