package checksum

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	assert.Equal(t, uint32(0), Sum(""))
	assert.Equal(t, uint32(434), Sum("Mnau!"))
	assert.Equal(t, uint32(255*18), Sum(strings.Repeat("\xff", 18)))
}

func TestLoginHash(t *testing.T) {
	pair, ok := Lookup(2)
	require.True(t, ok)
	server, client := LoginHash("Mnau!", pair)
	// 434 * 1000 % 65536 = 40784
	assert.Equal(t, uint32(59573), server)
	assert.Equal(t, uint32(54387), client)
}

func TestLoginHashRange(t *testing.T) {
	names := []string{"", "a", "Mnau!", "Oompa Loompa", strings.Repeat("\xff", 18)}
	for _, name := range names {
		for i := 0; i < Secrets(); i++ {
			pair, ok := Lookup(i)
			require.True(t, ok)
			s1, c1 := LoginHash(name, pair)
			s2, c2 := LoginHash(name, pair)
			require.Equal(t, s1, s2)
			require.Equal(t, c1, c2)
			require.Less(t, s1, uint32(65536))
			require.Less(t, c1, uint32(65536))
		}
	}
}

func TestLookup(t *testing.T) {
	require.Equal(t, 5, Secrets())
	for _, idx := range []int{-1, 5, 100} {
		_, ok := Lookup(idx)
		assert.False(t, ok, idx)
	}
	pair, ok := Lookup(0)
	require.True(t, ok)
	assert.Equal(t, Pair{Server: 23019, Client: 32037}, pair)
}
