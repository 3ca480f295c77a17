package lake_test

import (
	"testing"

	"github.com/sparkify/lake"
)

func TestNexter(t *testing.T) {
	n := lake.NewNexter(lake.NexterStartFrom(19))
	if num := n.Next(); num != 19 {
		t.Fatalf("expected 19 for Next, but %d", num)
	}
	if num := n.Last(); num != 19 {
		t.Fatalf("expected 19 for Last, but %d", num)
	}
}

func TestPartitionNexter(t *testing.T) {
	pn := lake.NewPartitionNexter()
	a0 := pn.Next(201811)
	a1 := pn.Next(201811)
	b0 := pn.Next(201812)

	if a0 != 201811<<lake.PartitionBits {
		t.Fatalf("unexpected first id for partition: %d", a0)
	}
	if a1 != a0+1 {
		t.Fatalf("ids within a partition should be sequential: %d then %d", a0, a1)
	}
	if b0 == a0 || b0 == a1 {
		t.Fatalf("ids collided across partitions: %d", b0)
	}
	if b0&(1<<lake.PartitionBits-1) != 0 {
		t.Fatalf("new partition should start its counter at 0: %d", b0)
	}
}
