package batch

import (
	"slices"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range n {
		out[i] = i + 1
	}
	return out
}

func TestPartition_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		size     int
		expected []int // batch lengths
	}{
		{"empty", 0, 10, nil},
		{"single item", 1, 10, []int{1}},
		{"exact multiple", 20, 10, []int{10, 10}},
		{"short tail", 23, 10, []int{10, 10, 3}},
		{"smaller than batch", 7, 20, []int{7}},
		{"size one", 3, 1, []int{1, 1, 1}},
		{"grouping tail of one", 21, 20, []int{20, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			batches := Partition(seq(tc.n), tc.size)

			var lengths []int
			for _, b := range batches {
				lengths = append(lengths, len(b))
			}
			if !slices.Equal(lengths, tc.expected) {
				t.Errorf("Partition(%d, %d) lengths = %v; want %v", tc.n, tc.size, lengths, tc.expected)
			}

			if len(batches) != Count(tc.n, tc.size) {
				t.Errorf("Count(%d, %d) = %d; Partition produced %d", tc.n, tc.size, Count(tc.n, tc.size), len(batches))
			}
		})
	}
}

func TestPartition_ConcatenationEqualsInput(t *testing.T) {
	for n := range 45 {
		for _, size := range []int{1, 2, 3, 10, 20} {
			items := seq(n)

			var joined []int
			for _, b := range Partition(items, size) {
				if len(b) == 0 {
					t.Fatalf("n=%d size=%d produced an empty batch", n, size)
				}
				if len(b) > size {
					t.Fatalf("n=%d size=%d produced a batch of %d", n, size, len(b))
				}
				joined = append(joined, b...)
			}

			if !slices.Equal(joined, items) {
				t.Errorf("n=%d size=%d: concatenation %v != input %v", n, size, joined, items)
			}
		}
	}
}

func TestPartition_AppendDoesNotClobberNextBatch(t *testing.T) {
	batches := Partition(seq(4), 2)

	_ = append(batches[0], 99)

	if batches[1][0] != 3 {
		t.Errorf("appending to first batch modified second batch: %v", batches[1])
	}
}

func TestPartition_InvalidSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero batch size")
		}
	}()
	Partition(seq(3), 0)
}

func TestCount(t *testing.T) {
	if got := Count(0, 10); got != 0 {
		t.Errorf("Count(0, 10) = %d; want 0", got)
	}
	if got := Count(10, 10); got != 1 {
		t.Errorf("Count(10, 10) = %d; want 1", got)
	}
	if got := Count(11, 10); got != 2 {
		t.Errorf("Count(11, 10) = %d; want 2", got)
	}
	if got := Count(5, 0); got != 0 {
		t.Errorf("Count(5, 0) = %d; want 0", got)
	}
}
