package accounting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

func TestParsePartyType(t *testing.T) {
	pt, err := ParsePartyType("customer")
	require.NoError(t, err)
	require.Equal(t, PartyCustomer, pt)
	require.Equal(t, "Sales Invoice", pt.InvoiceDoctype())
	require.Equal(t, "customer_name", pt.PartyNameField())
	require.Equal(t, "Receive", pt.PaymentType())

	pt, err = ParsePartyType(" Supplier ")
	require.NoError(t, err)
	require.Equal(t, "Purchase Invoice", pt.InvoiceDoctype())
	require.Equal(t, "supplier", pt.PartyField())
	require.Equal(t, "Pay", pt.PaymentType())

	_, err = ParsePartyType("")
	require.ErrorIs(t, err, httpx.ErrInvalidArgument)
	_, err = ParsePartyType("Employee")
	require.ErrorIs(t, err, httpx.ErrInvalidArgument)
}
