package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCommonFilter_Validate(t *testing.T) {
	allowed := map[string]bool{"status": true, "created_at": true}

	ok := &CommonFilter{Field: "status", Operator: CommonFilterOperatorEq, Values: []any{"paid"}}
	require.NoError(t, ok.Validate(allowed))

	cases := []*CommonFilter{
		nil,
		{Field: "status; DROP TABLE x", Operator: CommonFilterOperatorEq, Values: []any{"paid"}},
		{Field: "status", Operator: "like", Values: []any{"paid"}},
		{Field: "status", Operator: CommonFilterOperatorIn},
		{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{1}},
		{Field: "created_at", Operator: CommonFilterOperatorDateRange, Values: []any{"yesterday", "today"}},
	}
	for _, f := range cases {
		require.ErrorIs(t, f.Validate(allowed), ErrInvalidFilter)
	}
}

func TestParseFilterTime(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := parseFilterTime("2026-01-02T03:04:05Z")
	require.NoError(t, err)
	require.True(t, want.Equal(got))

	got, err = parseFilterTime(float64(want.Unix()))
	require.NoError(t, err)
	require.True(t, want.Equal(got))

	_, err = parseFilterTime(true)
	require.Error(t, err)
}
