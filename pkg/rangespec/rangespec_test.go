package rangespec

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"sync"
	"testing"

	"docutil/pkg/core"
)

func TestGetNumbers(t *testing.T) {
	tests := []struct {
		name  string
		total int
		spec  string
		want  []int
	}{
		{"last element", 10, "-1", []int{10}},
		{"left open negative", 10, "-3..", []int{8, 9, 10}},
		{"right open", 10, "..2", []int{1, 2}},
		{"descending", 5, "3..1", []int{3, 2, 1}},
		{"order preserved", 5, "1,3,5", []int{1, 3, 5}},
		{"unsorted tokens", 5, "5,1,3", []int{5, 1, 3}},
		{"duplicates kept", 5, "1..3,2", []int{1, 2, 3, 2}},
		{"mixed", 10, "1..2,5,-3..", []int{1, 2, 5, 8, 9, 10}},
		{"whitespace", 10, " 1 .. 3 , 7 ", []int{1, 2, 3, 7}},
		{"negative full range", 10, "-2..-1", []int{9, 10}},
		{"reverse with negatives", 10, "-1..-3", []int{10, 9, 8}},
		{"degenerate range", 4, "2..2", []int{2}},
		{"explicit plus sign", 4, "+2", []int{2}},
		{"resolves to first", 6, "-6..", []int{1, 2, 3, 4, 5, 6}},
		{"right open negative", 6, "..-5", []int{1, 2}},
		{"whole collection", 1, "1", []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetNumbers(tt.total, tt.spec)
			if err != nil {
				t.Fatalf("GetNumbers(%d, %q): %v", tt.total, tt.spec, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetNumbers(%d, %q) = %v, want %v", tt.total, tt.spec, got, tt.want)
			}
		})
	}
}

func TestGetNumbers_FullRangeCoversCollection(t *testing.T) {
	for total := 1; total <= 50; total++ {
		got, err := GetNumbers(total, "1.."+strconv.Itoa(total))
		if err != nil {
			t.Fatalf("total %d: %v", total, err)
		}
		if len(got) != total {
			t.Fatalf("total %d: got %d numbers", total, len(got))
		}
		for i, n := range got {
			if n != i+1 {
				t.Fatalf("total %d: position %d = %d", total, i, n)
			}
		}
	}
}

func TestGetNumbers_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		total int
		spec  string
	}{
		{"zero", 5, "0"},
		{"too large", 5, "6"},
		{"too negative", 5, "-6"},
		{"zero total", 0, "1"},
		{"negative total", -3, "1"},
		{"empty spec", 5, ""},
		{"blank spec", 5, "   "},
		{"empty token", 5, "1,,2"},
		{"trailing comma", 5, "1,"},
		{"bare operator", 5, ".."},
		{"letters", 5, "a"},
		{"double range", 5, "1..2..3"},
		{"inner space", 5, "1 2"},
		{"lone sign", 5, "-"},
		{"double sign", 5, "--1"},
		{"zero in range", 5, "0..2"},
		{"right out of range", 5, "2..9"},
		{"open out of range", 5, "7.."},
		{"float", 5, "1.5"},
		{"min int", 10, strconv.Itoa(math.MinInt)},
		{"max int", 10, strconv.Itoa(math.MaxInt)},
		{"min int range", 10, strconv.Itoa(math.MinInt) + "..1"},
		{"min int left open", 10, ".." + strconv.Itoa(math.MinInt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetNumbers(tt.total, tt.spec)
			if err == nil {
				t.Fatalf("GetNumbers(%d, %q) = %v, want error", tt.total, tt.spec, got)
			}
			if !errors.Is(err, core.ErrInvalidRangeSpec) {
				t.Errorf("expected INVALID_RANGE_SPEC, got %v", err)
			}
		})
	}
}

func TestGetNumbers_ErrorContext(t *testing.T) {
	_, err := GetNumbers(5, "1,6")
	var e *core.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *core.Error, got %T", err)
	}
	if v, _ := e.Detail("total_size"); v != 5 {
		t.Errorf("total_size detail = %v", v)
	}
	if v, _ := e.Detail("value"); v != 6 {
		t.Errorf("value detail = %v", v)
	}
	if v, _ := e.Detail("token"); v != "6" {
		t.Errorf("token detail = %v", v)
	}
}

func TestGetNumbers_ErrorsAreFresh(t *testing.T) {
	_, err1 := GetNumbers(5, "9")
	_, err2 := GetNumbers(5, "8")
	if err1 == err2 {
		t.Fatal("expected distinct error values per call")
	}
	if err1.Error() == err2.Error() {
		t.Errorf("expected different context, both %q", err1.Error())
	}
}

func TestGetNumbers_Idempotent(t *testing.T) {
	first, err := GetNumbers(20, "-5..,3..1,7")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := GetNumbers(20, "-5..,3..1,7")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: %v != %v", i, again, first)
		}
	}
}

func TestGetNumbers_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for total := 1; total <= 32; total++ {
		wg.Add(1)
		go func(total int) {
			defer wg.Done()
			got, err := GetNumbers(total, "..-1")
			if err != nil {
				t.Errorf("total %d: %v", total, err)
				return
			}
			if len(got) != total {
				t.Errorf("total %d: got %d numbers", total, len(got))
			}
		}(total)
	}
	wg.Wait()
}

func TestCount(t *testing.T) {
	tests := []struct {
		spec string
		want int
	}{
		{"1..10", 10},
		{"10..1", 10},
		{"-3..,1", 4},
		{"..2,2..", 11},
	}
	for _, tt := range tests {
		got, err := Count(10, tt.spec)
		if err != nil {
			t.Fatalf("Count(%q): %v", tt.spec, err)
		}
		numbers, _ := GetNumbers(10, tt.spec)
		if got != tt.want || got != len(numbers) {
			t.Errorf("Count(%q) = %d, want %d (GetNumbers len %d)", tt.spec, got, tt.want, len(numbers))
		}
	}

	if _, err := Count(10, "11"); !errors.Is(err, core.ErrInvalidRangeSpec) {
		t.Errorf("expected INVALID_RANGE_SPEC, got %v", err)
	}
}

func TestCount_Overflow(t *testing.T) {
	got, err := Count(math.MaxInt, "1..")
	if err != nil || got != math.MaxInt {
		t.Fatalf("Count(MaxInt, \"1..\") = %d, %v", got, err)
	}

	if _, err := Count(math.MaxInt, "1..,1.."); !errors.Is(err, core.ErrInvalidRangeSpec) {
		t.Errorf("expected INVALID_RANGE_SPEC on overflow, got %v", err)
	}
	if _, err := Count(math.MaxInt, "-1,1.."); !errors.Is(err, core.ErrInvalidRangeSpec) {
		t.Errorf("expected INVALID_RANGE_SPEC on overflow, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		total, value, want int
		wantErr            bool
	}{
		{10, 1, 1, false},
		{10, 10, 10, false},
		{10, -1, 10, false},
		{10, -10, 1, false},
		{10, -3, 8, false},
		{10, 0, 0, true},
		{10, 11, 0, true},
		{10, -11, 0, true},
		{0, 1, 0, true},
		{10, math.MinInt, 0, true},
		{10, math.MaxInt, 0, true},
		{math.MaxInt, math.MinInt, 0, true},
		{math.MaxInt, -math.MaxInt, 1, false},
		{math.MaxInt, math.MaxInt, math.MaxInt, false},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.total, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%d, %d) error = %v, wantErr %v", tt.total, tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%d, %d) = %d, want %d", tt.total, tt.value, got, tt.want)
		}
	}
}
