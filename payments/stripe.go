package payments

import (
	"context"
	"encoding/json"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Intent is the slice of the gateway's payment-intent object the rest
// of the app needs: the id we reconcile webhooks against and the client
// secret the frontend completes payment with.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, receiptEmail string) (*Intent, error)
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

type StripeGateway struct {
	sc            *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sc: sc, webhookSecret: webhookSecret}
}

// CreateIntent reserves a payment for the given amount in minor
// currency units. The amount is passed to Stripe unchanged; minor units
// are the only representation anywhere in the system.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency, receiptEmail string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	params.Context = ctx

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// VerifyWebhook checks the signature header against the shared webhook
// secret and parses the event. A signature mismatch is the caller's cue
// to reject with 400.
func (g *StripeGateway) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
}

// ChargeFromEvent unmarshals the charge object out of a charge.* event.
func ChargeFromEvent(e stripe.Event) (*stripe.Charge, error) {
	var ch stripe.Charge
	if err := json.Unmarshal(e.Data.Raw, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}
