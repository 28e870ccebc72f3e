package perm

import (
	"fmt"
	"slices"
	"testing"
)

func TestSeq(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{-1, []int{}},
		{0, []int{}},
		{1, []int{0}},
		{4, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		if got := Seq(tt.n); !slices.Equal(got, tt.want) {
			t.Errorf("Seq(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestFactorial(t *testing.T) {
	tests := []struct{ n, want int }{{0, 1}, {1, 1}, {3, 6}, {5, 120}, {7, 5040}}
	for _, tt := range tests {
		if got := Factorial(tt.n); got != tt.want {
			t.Errorf("Factorial(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestGenerateAllDistinct(t *testing.T) {
	for n := 0; n <= 5; n++ {
		perms := Generate(n, 0)
		if len(perms) != Factorial(n) {
			t.Fatalf("Generate(%d) returned %d perms, want %d", n, len(perms), Factorial(n))
		}
		seen := make(map[string]bool)
		for _, p := range perms {
			key := fmt.Sprint(p)
			if seen[key] {
				t.Fatalf("Generate(%d) repeated %v", n, p)
			}
			seen[key] = true
			sorted := slices.Sorted(slices.Values(p))
			if !slices.Equal(sorted, Seq(n)) {
				t.Fatalf("Generate(%d) produced non-permutation %v", n, p)
			}
		}
	}
}

func TestGenerateOrder(t *testing.T) {
	got := Generate(3, 0)
	want := [][]int{{0, 1, 2}, {1, 0, 2}, {2, 0, 1}, {0, 2, 1}, {1, 2, 0}, {2, 1, 0}}
	if len(got) != len(want) {
		t.Fatalf("got %d perms, want %d", len(got), len(want))
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("perm %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateLimit(t *testing.T) {
	if got := len(Generate(10, 5)); got != 5 {
		t.Errorf("Generate(10, 5) returned %d perms, want 5", got)
	}
}

func TestEachStops(t *testing.T) {
	calls := 0
	visited := Each(4, func([]int) bool {
		calls++
		return calls < 3
	})
	if calls != 3 || visited != 3 {
		t.Errorf("calls = %d, visited = %d, want 3 and 3", calls, visited)
	}
}
