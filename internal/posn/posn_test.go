package posn_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/posn"
)

func TestAddAndGet(t *testing.T) {
	tbl := posn.New()
	p := tbl.Add("a.fil", 10, 20)
	require.Equal(t, posn.Span{File: "a.fil", Start: 10, End: 20}, tbl.Get(p))
	require.Equal(t, posn.Span{}, tbl.Get(posn.NoPos))
}

func TestFreezePanicsOnAdd(t *testing.T) {
	tbl := posn.New()
	tbl.Freeze()
	require.Panics(t, func() { tbl.Add("a.fil", 0, 1) })
}

func TestLessOrdersByFileThenStart(t *testing.T) {
	tbl := posn.New()
	a := tbl.Add("a.fil", 5, 10)
	b := tbl.Add("a.fil", 2, 4)
	c := tbl.Add("b.fil", 0, 1)

	require.True(t, tbl.Less(b, a))
	require.False(t, tbl.Less(a, b))
	require.True(t, tbl.Less(a, c))
}
