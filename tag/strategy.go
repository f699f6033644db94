package tag

import (
	"fmt"
	"strings"
)

// Strategy selects the Table implementation used for new segments.
type Strategy uint8

const (
	PerWord Strategy = iota
	Packed
	Disabled
)

var strategyNames = [...]string{
	PerWord:  "per-word",
	Packed:   "packed",
	Disabled: "disabled",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// Safe reports whether the strategy enforces capability integrity.
func (s Strategy) Safe() bool {
	return s != Disabled
}

// ParseStrategy parses a strategy name as produced by String.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "per-word", "perword", "word":
		return PerWord, nil
	case "packed", "bitset":
		return Packed, nil
	case "disabled", "none", "notags":
		return Disabled, nil
	}
	return 0, fmt.Errorf("unknown tag strategy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// New creates an all-Data table of the given strategy covering words words.
func New(s Strategy, words uint32) Table {
	switch s {
	case Packed:
		return NewPacked(words)
	case Disabled:
		return disabled{}
	default:
		return NewPerWord(words)
	}
}
