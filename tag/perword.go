package tag

// PerWordTable keeps one Tag value per word.
type PerWordTable struct {
	tags []Tag
}

// NewPerWord creates a table of words Data tags.
func NewPerWord(words uint32) *PerWordTable {
	return &PerWordTable{tags: make([]Tag, words)}
}

func (t *PerWordTable) Len() int { return len(t.tags) }

func (t *PerWordTable) Get(word uint32) (Tag, error) {
	if int(word) >= len(t.tags) {
		return Data, outOfRange(word, len(t.tags))
	}
	return t.tags[word], nil
}

func (t *PerWordTable) Set(word uint32, tg Tag) error {
	if int(word) >= len(t.tags) {
		return outOfRange(word, len(t.tags))
	}
	t.tags[word] = tg
	return nil
}
