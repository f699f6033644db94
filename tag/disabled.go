package tag

// disabled stores nothing and reports every word as a potential handle.
type disabled struct{}

func (disabled) Len() int                { return 0 }
func (disabled) Get(uint32) (Tag, error) { return Handle, nil }
func (disabled) Set(uint32, Tag) error   { return nil }
