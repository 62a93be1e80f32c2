package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAccountID_UniqueAndValid(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewAccountID()
		require.True(t, ValidID(id))
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestValidID(t *testing.T) {
	require.True(t, ValidID(NewID()))
	require.False(t, ValidID(""))
	require.False(t, ValidID("not-a-uuid"))
	require.False(t, ValidID("12345"))
}
