package marketerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"marketdash/internal/marketerr"
)

func TestConstructors_KindAndRetryable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		err       *marketerr.Error
		kind      marketerr.Kind
		retryable bool
		status    int
	}{
		{"network", marketerr.Network("", nil), marketerr.KindNetwork, true, http.StatusServiceUnavailable},
		{"quota", marketerr.QuotaExceeded(""), marketerr.KindQuotaExceeded, true, http.StatusTooManyRequests},
		{"not found", marketerr.SymbolNotFound("XYZ", ""), marketerr.KindSymbolNotFound, false, http.StatusNotFound},
		{"config", marketerr.ProviderConfig(""), marketerr.KindProviderConfig, false, http.StatusInternalServerError},
		{"unknown", marketerr.New(marketerr.KindUnknown, "boom", false, nil), marketerr.KindUnknown, false, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.kind, tc.err.Kind)
			require.Equal(t, tc.retryable, tc.err.Retryable)
			require.NotEmpty(t, tc.err.Message)
			require.Equal(t, tc.status, marketerr.HTTPStatus(tc.err))
		})
	}
}

func TestFrom_PassesThroughWrappedTaxonomyErrors(t *testing.T) {
	t.Parallel()

	// Arrange: a taxonomy error wrapped by an outer layer.
	orig := marketerr.QuotaExceeded("slow down")
	wrapped := fmt.Errorf("history: %w", orig)

	// Act
	got := marketerr.From(wrapped)

	// Assert: the original value is recovered, not re-wrapped.
	require.Same(t, orig, got)
	require.True(t, marketerr.IsKind(wrapped, marketerr.KindQuotaExceeded))
}

func TestFrom_WrapsForeignErrorsAsUnknown(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk on fire")
	got := marketerr.From(cause)

	require.Equal(t, marketerr.KindUnknown, got.Kind)
	require.False(t, got.Retryable)
	require.Equal(t, "disk on fire", got.Message)
	require.ErrorIs(t, got, cause)
	require.Nil(t, marketerr.From(nil))
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	p := marketerr.Serialize(marketerr.Network("upstream down", errors.New("dial tcp")))
	require.Equal(t, marketerr.Payload{Type: marketerr.KindNetwork, Message: "upstream down", Retryable: true}, p)

	p = marketerr.Serialize(errors.New("plain"))
	require.Equal(t, marketerr.KindUnknown, p.Type)
	require.Equal(t, "plain", p.Message)
	require.False(t, p.Retryable)
}

func TestHTTPStatus_ForeignErrorIs500(t *testing.T) {
	t.Parallel()
	require.Equal(t, http.StatusInternalServerError, marketerr.HTTPStatus(errors.New("x")))
}
