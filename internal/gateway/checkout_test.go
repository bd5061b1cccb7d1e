package gateway

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *Gateway {
	return New(Config{
		BaseURL:       "https://secure.example-gateway.is/securepay",
		MerchantID:    "9256684",
		GatewayID:     "16",
		SecretKey:     "test-secret",
		Currency:      "ISK",
		Language:      "IS",
		PublicBaseURL: "https://mama.example.is",
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "4500.00", FormatAmount(4500))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "1.00", FormatAmount(1))
}

func TestHmac256(t *testing.T) {
	// Deterministic and hex-encoded.
	got := Hmac256([]byte("payload"), []byte("key"))
	assert.Len(t, got, 64)
	assert.Equal(t, got, Hmac256([]byte("payload"), []byte("key")))
	assert.NotEqual(t, got, Hmac256([]byte("payload"), []byte("other-key")))
}

func TestSignedCheckout_TicketFlow(t *testing.T) {
	g := testGateway()

	checkout := g.SignedCheckout(CheckoutRequest{
		Flow:            FlowTicket,
		OrderID:         "WL1A2B3C4D",
		Amount:          9000,
		BuyerName:       "Jon Jonsson",
		BuyerEmail:      "jon@example.is",
		ItemDescription: "Concert tickets",
		ItemCount:       2,
	})

	require.NotEmpty(t, checkout.Fields["checkhash"])
	assert.Equal(t, "9000.00", checkout.Fields["amount"])
	assert.Equal(t, "4500.00", checkout.Fields["itemunitamount_0"])
	assert.Equal(t, "2", checkout.Fields["itemcount_0"])
	assert.Equal(t, "9256684", checkout.Fields["merchantid"])
	assert.Equal(t, "https://mama.example.is/api/lotus/payment/tickets/callback", checkout.Fields["returnurlsuccessserver"])
	assert.True(t, strings.HasPrefix(checkout.URL, "https://secure.example-gateway.is/securepay?"))

	// The hash must re-derive from the ticket flow's field order.
	expected := SignFields([]string{
		"9256684",
		checkout.Fields["returnurlsuccess"],
		checkout.Fields["returnurlsuccessserver"],
		"WL1A2B3C4D",
		"9000.00",
		"ISK",
	}, "test-secret")
	assert.Equal(t, expected, checkout.Fields["checkhash"])
}

func TestSignedCheckout_CardFlowUsesDifferentFieldOrder(t *testing.T) {
	g := testGateway()

	ticket := g.SignedCheckout(CheckoutRequest{Flow: FlowTicket, OrderID: "order-1", Amount: 5000})
	card := g.SignedCheckout(CheckoutRequest{Flow: FlowGiftCard, OrderID: "order-1", Amount: 5000})

	assert.NotEqual(t, ticket.Fields["checkhash"], card.Fields["checkhash"])

	expected := SignFields([]string{
		"9256684",
		"order-1",
		"5000.00",
		"ISK",
		card.Fields["returnurlsuccess"],
		card.Fields["returnurlsuccessserver"],
	}, "test-secret")
	assert.Equal(t, expected, card.Fields["checkhash"])
}

func TestVerifyCallback(t *testing.T) {
	g := testGateway()

	hash := SignFields([]string{"order-9", "4500.00", "ISK"}, "test-secret")

	assert.True(t, g.VerifyCallback("order-9", "4500.00", "ISK", hash))
	assert.False(t, g.VerifyCallback("order-9", "4500.00", "ISK", "tampered"))
	assert.False(t, g.VerifyCallback("order-9", "9999.00", "ISK", hash))
	assert.False(t, g.VerifyCallback("other-order", "4500.00", "ISK", hash))
}

func TestVerifyCallback_Idempotent(t *testing.T) {
	g := testGateway()
	hash := SignFields([]string{"order-9", "4500.00", "ISK"}, "test-secret")

	// Replaying an unchanged callback verifies again; double-processing is
	// prevented by the conditional status update, not the hash.
	assert.True(t, g.VerifyCallback("order-9", "4500.00", "ISK", hash))
	assert.True(t, g.VerifyCallback("order-9", "4500.00", "ISK", hash))
}

func TestCompareStaffPIN(t *testing.T) {
	hash, err := HashStaffPIN("4812")
	require.NoError(t, err)

	assert.True(t, CompareStaffPIN(hash, "4812"))
	assert.False(t, CompareStaffPIN(hash, "0000"))
	assert.False(t, CompareStaffPIN("", "4812"))
	assert.False(t, CompareStaffPIN(hash, ""))
}
