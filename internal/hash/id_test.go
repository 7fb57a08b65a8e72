package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemWidth(t *testing.T) {
	names := []string{"simple.counter", "products.count", "a", "metric.with.a.rather.long.name"}
	for _, name := range names {
		id := Item(name)
		require.Less(t, id, uint32(1<<10), "item id for %q exceeds 10 bits", name)
	}
}

func TestItemDeterministic(t *testing.T) {
	require.Equal(t, Item("cpu.usage"), Item("cpu.usage"))
	require.NotEqual(t, Item("cpu.usage"), Item("cpu.idle"))
}

func TestIndomWidth(t *testing.T) {
	id := Indom([]string{"Anvils", "Rockets", "Giant_Rubber_Bands"})
	require.Less(t, id, uint32(1<<22))
}

func TestIndomOrderSensitive(t *testing.T) {
	a := Indom([]string{"a", "b"})
	b := Indom([]string{"b", "a"})
	require.NotEqual(t, a, b)

	// The separator keeps ["ab"] and ["a", "b"] apart.
	require.NotEqual(t, Indom([]string{"ab"}), Indom([]string{"a", "b"}))
}

func TestInstanceDeterministic(t *testing.T) {
	require.Equal(t, Instance("Rockets"), Instance("Rockets"))
	require.NotEqual(t, Instance("Rockets"), Instance("Anvils"))
}
