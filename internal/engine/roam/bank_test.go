package roam

import (
	"errors"
	"testing"

	"github.com/Faultbox/roam-terrain/internal/engine/camera"
)

func TestNewBankValidation(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		total   int
		ceiling int
		want    error
	}{
		{"no workers", 0, 1024, 1024, ErrInvalidWorkers},
		{"too many workers", MaxWorkers + 1, 1024, 1024, ErrInvalidWorkers},
		{"zero pool", 1, 0, 0, ErrInvalidPoolSize},
		{"odd pool", 1, 1023, 2048, ErrInvalidPoolSize},
		{"ceiling beyond slot range", 1, 1024, 2 * MaxPoolSlots, ErrInvalidPoolSize},
		{"valid", 4, 1024, 4096, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBank(camera.Normal, 4, tt.workers, tt.total, tt.ceiling, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewBank() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPoolShare(t *testing.T) {
	tests := []struct {
		total, workers, want int
	}{
		{1 << 20, 1, 1 << 20},
		{1 << 20, 2, 1 << 19},
		{1 << 20, 4, 349524}, // a third, rounded down to even
		{1 << 20, 16, 349524},
		{4, 1, 4},
		{4, 8, 2},
	}

	for _, tt := range tests {
		if got := poolShare(tt.total, tt.workers); got != tt.want {
			t.Errorf("poolShare(%d, %d) = %d, want %d", tt.total, tt.workers, got, tt.want)
		}
	}
}

func TestBankRootsAndDummy(t *testing.T) {
	b, err := NewBank(camera.Shadow, 3, 2, 64, 64, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.Camera() != camera.Shadow || b.Workers() != 2 {
		t.Errorf("Camera() = %v, Workers() = %d", b.Camera(), b.Workers())
	}

	seen := map[NodeRef]bool{NullNode: true}
	for i := 0; i < 3; i++ {
		for _, r := range []NodeRef{b.RootLeft(i), b.RootRight(i)} {
			if r.Pool() != 0 {
				t.Errorf("root %s not in the root table", r)
			}
			if seen[r] {
				t.Errorf("root %s handed out twice", r)
			}
			seen[r] = true
		}
	}

	dummy := b.Node(NullNode)
	if !dummy.IsLeaf() || *dummy != (TreeNode{}) {
		t.Errorf("dummy node = %+v, want an empty leaf", *dummy)
	}
	if b.Capacity() != 64 {
		t.Errorf("Capacity() = %d, want 64", b.Capacity())
	}
}

func TestBankResetAllGrowsUpToCeiling(t *testing.T) {
	b, err := NewBank(camera.Normal, 1, 1, 4, 16, nil)
	if err != nil {
		t.Fatal(err)
	}

	exhaust := func() {
		for !b.Exhausted() {
			b.Pool(0).Allocate()
		}
	}

	for _, want := range []int{8, 16} {
		exhaust()
		if !b.ResetAll() {
			t.Fatalf("ResetAll() did not grow the bank to %d", want)
		}
		if b.Total() != want || b.Capacity() != want || b.Used() != 0 {
			t.Errorf("total=%d capacity=%d used=%d, want %d %d 0", b.Total(), b.Capacity(), b.Used(), want, want)
		}
	}

	exhaust()
	if b.ResetAll() {
		t.Error("ResetAll() grew past the ceiling")
	}
	if b.Used() != 0 || b.Exhausted() {
		t.Error("ResetAll() at the ceiling should still reset the pools")
	}
}

func TestBankResetAllWithoutExhaustionKeepsSize(t *testing.T) {
	b, err := NewBank(camera.Normal, 1, 2, 32, 1024, nil)
	if err != nil {
		t.Fatal(err)
	}
	b.Pool(1).Allocate()
	if b.ResetAll() {
		t.Error("ResetAll() grew without exhaustion")
	}
	if b.Total() != 32 || b.Used() != 0 {
		t.Errorf("total=%d used=%d, want 32 0", b.Total(), b.Used())
	}
}
