// Package rangespec expands human-authored range expressions such as
// "1..2,5,-3.." into the 1-based indices they denote within a
// collection of known size.
//
// Negative bounds count back from the end: -1 is the last element.
// A range whose start is past its end expands in descending order.
// Token order is preserved and duplicates are kept.
package rangespec

import (
	"fmt"
	"math"
	"strings"

	"docutil/pkg/core"
)

// tokenSeparator separates tokens within a range expression.
const tokenSeparator = ","

// Parse splits spec into tokens and classifies each one. An empty
// token, and therefore an empty spec, is invalid.
func Parse(spec string) ([]Token, error) {
	parts := strings.Split(spec, tokenSeparator)
	tokens := make([]Token, 0, len(parts))
	for _, part := range parts {
		tok, err := ParseToken(part)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Resolve converts a literal bound into a 1-based index. Negative
// values count back from totalSize.
func Resolve(totalSize, value int) (int, error) {
	if value == 0 {
		return 0, outOfRange(totalSize, value, "bound must be nonzero")
	}
	// compare before negating: -math.MinInt overflows
	if value > totalSize || value < -totalSize {
		return 0, outOfRange(totalSize, value, fmt.Sprintf("bound exceeds collection size %d", totalSize))
	}
	if value < 0 {
		return totalSize + value + 1, nil
	}
	return value, nil
}

// GetNumbers returns the indices denoted by spec, in token order.
func GetNumbers(totalSize int, spec string) ([]int, error) {
	tokens, err := Parse(spec)
	if err != nil {
		return nil, withTotal(err, totalSize)
	}

	var numbers []int
	for _, tok := range tokens {
		start, end, err := tok.Bounds(totalSize)
		if err != nil {
			return nil, err
		}
		numbers = appendRun(numbers, start, end)
	}
	return numbers, nil
}

// Count returns len(GetNumbers(totalSize, spec)) without building the list.
// A count that does not fit in an int is INVALID_RANGE_SPEC.
func Count(totalSize int, spec string) (int, error) {
	tokens, err := Parse(spec)
	if err != nil {
		return 0, withTotal(err, totalSize)
	}

	total := 0
	for _, tok := range tokens {
		start, end, err := tok.Bounds(totalSize)
		if err != nil {
			return 0, err
		}
		run := end - start + 1
		if start > end {
			run = start - end + 1
		}
		if total > math.MaxInt-run {
			return 0, core.NewError(core.ErrInvalidRangeSpec, "selected index count overflows int").
				With("token", tok.Raw).
				With("total_size", totalSize)
		}
		total += run
	}
	return total, nil
}

// appendRun appends start..end inclusive, descending when start > end.
func appendRun(dst []int, start, end int) []int {
	if start <= end {
		for n := start; n <= end; n++ {
			dst = append(dst, n)
		}
		return dst
	}
	for n := start; n >= end; n-- {
		dst = append(dst, n)
	}
	return dst
}

func outOfRange(totalSize, value int, msg string) *core.Error {
	return core.NewError(core.ErrInvalidRangeSpec, msg).
		With("value", value).
		With("total_size", totalSize)
}

func withTotal(err error, totalSize int) error {
	if e, ok := err.(*core.Error); ok {
		return e.With("total_size", totalSize)
	}
	return err
}
