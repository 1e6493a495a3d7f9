package rangespec

import (
	"fmt"
	"strconv"
	"strings"

	"docutil/pkg/core"
)

// Kind distinguishes the four shapes a range token can take.
type Kind uint8

const (
	KindSingle    Kind = iota // N
	KindFull                  // L..R
	KindLeftOpen              // L..
	KindRightOpen             // ..R
)

// String returns the human-readable name of a token kind.
func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindFull:
		return "full"
	case KindLeftOpen:
		return "left_open"
	case KindRightOpen:
		return "right_open"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// rangeOperator separates the two bounds of a range token.
const rangeOperator = ".."

// Token is one parsed comma-separated unit of a range specification.
// Left is meaningless for KindRightOpen and Right for KindLeftOpen.
type Token struct {
	Kind  Kind
	Left  int
	Right int
	Raw   string
}

// String renders the token in canonical form.
func (t Token) String() string {
	switch t.Kind {
	case KindSingle:
		return strconv.Itoa(t.Left)
	case KindFull:
		return fmt.Sprintf("%d..%d", t.Left, t.Right)
	case KindLeftOpen:
		return fmt.Sprintf("%d..", t.Left)
	case KindRightOpen:
		return fmt.Sprintf("..%d", t.Right)
	default:
		return t.Raw
	}
}

// ParseToken classifies a single token. Surrounding whitespace and
// whitespace around the range operator are ignored.
func ParseToken(raw string) (Token, error) {
	s := strings.TrimSpace(raw)

	left, right, isRange := strings.Cut(s, rangeOperator)
	if !isRange {
		n, err := parseBound(s)
		if err != nil {
			return Token{}, invalidToken(raw, err)
		}
		return Token{Kind: KindSingle, Left: n, Right: n, Raw: raw}, nil
	}

	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)

	switch {
	case left != "" && right != "":
		l, err := parseBound(left)
		if err != nil {
			return Token{}, invalidToken(raw, err)
		}
		r, err := parseBound(right)
		if err != nil {
			return Token{}, invalidToken(raw, err)
		}
		return Token{Kind: KindFull, Left: l, Right: r, Raw: raw}, nil
	case left != "":
		l, err := parseBound(left)
		if err != nil {
			return Token{}, invalidToken(raw, err)
		}
		return Token{Kind: KindLeftOpen, Left: l, Raw: raw}, nil
	case right != "":
		r, err := parseBound(right)
		if err != nil {
			return Token{}, invalidToken(raw, err)
		}
		return Token{Kind: KindRightOpen, Right: r, Raw: raw}, nil
	default:
		return Token{}, invalidToken(raw, fmt.Errorf("range has no bounds"))
	}
}

// parseBound accepts an optionally signed decimal integer.
func parseBound(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty bound")
	}
	for i, c := range s {
		if c >= '0' && c <= '9' {
			continue
		}
		if i == 0 && (c == '-' || c == '+') && len(s) > 1 {
			continue
		}
		return 0, fmt.Errorf("unexpected character %q", c)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse bound %q: %w", s, err)
	}
	return n, nil
}

// Bounds applies the open-range defaults and resolves both endpoints
// against totalSize.
func (t Token) Bounds(totalSize int) (start, end int, err error) {
	left, right := t.Left, t.Right
	switch t.Kind {
	case KindSingle:
		right = left
	case KindLeftOpen:
		right = totalSize
	case KindRightOpen:
		left = 1
	case KindFull:
	default:
		return 0, 0, invalidToken(t.Raw, fmt.Errorf("unknown token kind %s", t.Kind))
	}

	if start, err = Resolve(totalSize, left); err != nil {
		return 0, 0, withToken(err, t.Raw)
	}
	if end, err = Resolve(totalSize, right); err != nil {
		return 0, 0, withToken(err, t.Raw)
	}
	return start, end, nil
}

func invalidToken(raw string, cause error) *core.Error {
	e := core.WrapError(core.ErrInvalidRangeSpec, cause)
	e.Message = fmt.Sprintf("unrecognized range token %q", strings.TrimSpace(raw))
	return e.With("token", raw)
}

func withToken(err error, raw string) error {
	if e, ok := err.(*core.Error); ok {
		return e.With("token", raw)
	}
	return err
}
