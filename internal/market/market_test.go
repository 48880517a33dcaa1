package market

import (
	"testing"

	"github.com/stretchr/testify/require"

	"marketdash/internal/marketerr"
)

func TestNormalizeSymbol(t *testing.T) {
	t.Parallel()

	ok := map[string]string{
		"aapl":       "AAPL",
		"  msft ":    "MSFT",
		"brk.b":      "BRK.B",
		"A":          "A",
		"ABCDEFGHIJ": "ABCDEFGHIJ",
	}
	for in, want := range ok {
		got, err := NormalizeSymbol(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	bad := []string{"", "   ", "AAPL1", "BRK B", "ABCDEFGHIJK", "AB-C", "$TSLA"}
	for _, in := range bad {
		_, err := NormalizeSymbol(in)
		require.Error(t, err, in)
		require.True(t, marketerr.IsKind(err, marketerr.KindSymbolNotFound), in)
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()
	require.Equal(t, 1.24, Round2(1.235))
	require.Equal(t, -1.24, Round2(-1.235))
	require.Equal(t, 100.0, Round2(99.999))
	require.Equal(t, 0.0, Round2(0.001))
	// Ties are symmetric around zero.
	require.Equal(t, 0.13, Round2(0.125))
	require.Equal(t, -0.13, Round2(-0.125))
}

func TestChangePercent(t *testing.T) {
	t.Parallel()
	require.Equal(t, 10.0, ChangePercent(110, 10))
	require.Equal(t, -9.09, ChangePercent(100, -10))
	// prev == 0 is guarded.
	require.Equal(t, 0.0, ChangePercent(5, 5))
}
