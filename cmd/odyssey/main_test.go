package main

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/odyssey-bff/internal/testing/guard"
)

func TestMainReturnsInTestMode(t *testing.T) {
	main()
}

func TestImportsLeaveDecimalEncodingDefault(t *testing.T) {
	raw, err := json.Marshal(decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Equal(t, `"5"`, string(raw))
}
