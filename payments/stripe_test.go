package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v81"
)

// signPayload builds a Stripe-Signature header the way the gateway
// does: v1 is HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func chargeUpdatedPayload() []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": %q,
		"type": "charge.updated",
		"data": {
			"object": {
				"id": "ch_test_1",
				"object": "charge",
				"status": "succeeded",
				"payment_intent": "pi_test_1"
			}
		}
	}`, stripe.APIVersion))
}

func TestVerifyWebhook_ValidSignature(t *testing.T) {
	t.Parallel()

	g := NewStripeGateway("sk_test_x", "whsec_test")
	payload := chargeUpdatedPayload()

	event, err := g.VerifyWebhook(payload, signPayload(payload, "whsec_test", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, stripe.EventType("charge.updated"), event.Type)
}

func TestVerifyWebhook_InvalidSignature(t *testing.T) {
	t.Parallel()

	g := NewStripeGateway("sk_test_x", "whsec_test")
	payload := chargeUpdatedPayload()

	_, err := g.VerifyWebhook(payload, signPayload(payload, "whsec_wrong", time.Now()))
	assert.Error(t, err)
}

func TestVerifyWebhook_StaleTimestamp(t *testing.T) {
	t.Parallel()

	g := NewStripeGateway("sk_test_x", "whsec_test")
	payload := chargeUpdatedPayload()

	_, err := g.VerifyWebhook(payload, signPayload(payload, "whsec_test", time.Now().Add(-time.Hour)))
	assert.Error(t, err)
}

func TestChargeFromEvent(t *testing.T) {
	t.Parallel()

	g := NewStripeGateway("sk_test_x", "whsec_test")
	payload := chargeUpdatedPayload()

	event, err := g.VerifyWebhook(payload, signPayload(payload, "whsec_test", time.Now()))
	require.NoError(t, err)

	charge, err := ChargeFromEvent(event)
	require.NoError(t, err)
	assert.Equal(t, stripe.ChargeStatus("succeeded"), charge.Status)
	require.NotNil(t, charge.PaymentIntent)
	assert.Equal(t, "pi_test_1", charge.PaymentIntent.ID)
}
