package kernel

import (
	"strings"

	"orderflow/internal/pkg/errs"
)

const maxSourceLength = 128

// Source identifies where a guest request came from, by network address.
// The abuse guard counts rejections per (tenant, source).
type Source struct {
	value string
}

func NewSource(value string) (Source, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Source{}, errs.NewValueIsRequiredError("source")
	}
	if len(value) > maxSourceLength {
		return Source{}, errs.NewValueIsOutOfRangeError("source length", len(value), 1, maxSourceLength)
	}
	return Source{value: value}, nil
}

// MustSource is NewSource for literals in tests.
func MustSource(value string) Source {
	s, err := NewSource(value)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Source) String() string {
	return s.value
}

func (s Source) IsZero() bool {
	return s.value == ""
}
