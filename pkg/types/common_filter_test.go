package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonFilter_Validate(t *testing.T) {
	allowed := map[string]bool{"payee_id": true, "recorded_at": true}

	require.NoError(t, (&CommonFilter{Field: "payee_id", Operator: CommonFilterOperatorEq, Values: []any{"p1"}}).Validate(allowed))
	require.Error(t, (&CommonFilter{Field: "1=1; drop table payment", Operator: CommonFilterOperatorEq, Values: []any{"x"}}).Validate(allowed))
	require.Error(t, (&CommonFilter{Field: "payee_id", Operator: CommonFilterOperatorEq}).Validate(allowed))
	require.Error(t, (&CommonFilter{Field: "recorded_at", Operator: CommonFilterOperatorRange, Values: []any{"2026-01-01"}}).Validate(allowed))

	var nilFilter *CommonFilter
	require.Error(t, nilFilter.Validate(allowed))
}
