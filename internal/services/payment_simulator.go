package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripstack/travel-backend/internal/utils"
)

// Simulated charge outcomes, recorded on billing rows and mapped to the
// payment_failed response code by the booking engine.
const (
	PaymentErrorCardDeclined  = "card_declined"
	PaymentErrorNetwork       = "network_error"
	PaymentErrorInvalidAmount = "invalid_amount"
)

// Token prefixes that force a failure outcome. Any other token is approved.
const (
	tokenPrefixDeclined = "tok_fail_"
	tokenPrefixNetwork  = "tok_net_"
)

// ChargeRequest describes one charge attempt
type ChargeRequest struct {
	UserID   uuid.UUID
	Amount   float64
	Currency string
	Token    string
}

// ChargeResult is the simulated gateway response. RawResponse is persisted
// verbatim on the billing transaction.
type ChargeResult struct {
	Success     bool
	ProviderRef string
	ErrorType   string
	RawResponse map[string]interface{}
}

// PaymentSimulator stands in for a real payment gateway. Charge does no
// I/O, so outcomes are fully scripted by token prefix and amount.
type PaymentSimulator struct{}

// NewPaymentSimulator creates the simulator
func NewPaymentSimulator() *PaymentSimulator {
	return &PaymentSimulator{}
}

// Charge runs one simulated charge. Token prefixes are checked before the
// amount so a scripted decline wins even on a bad amount.
func (p *PaymentSimulator) Charge(req ChargeRequest) ChargeResult {
	ts := time.Now().UTC().Format(time.RFC3339)

	switch {
	case strings.HasPrefix(req.Token, tokenPrefixDeclined):
		return ChargeResult{
			ErrorType:   PaymentErrorCardDeclined,
			RawResponse: map[string]interface{}{"status": "declined", "reason": PaymentErrorCardDeclined, "ts": ts},
		}
	case strings.HasPrefix(req.Token, tokenPrefixNetwork):
		return ChargeResult{
			ErrorType:   PaymentErrorNetwork,
			RawResponse: map[string]interface{}{"status": "error", "reason": PaymentErrorNetwork, "ts": ts},
		}
	case req.Amount <= 0:
		return ChargeResult{
			ErrorType:   PaymentErrorInvalidAmount,
			RawResponse: map[string]interface{}{"status": "rejected", "reason": PaymentErrorInvalidAmount, "ts": ts},
		}
	}

	ref, err := utils.GenerateSecret(12)
	if err != nil {
		return ChargeResult{
			ErrorType:   PaymentErrorNetwork,
			RawResponse: map[string]interface{}{"status": "error", "reason": "provider_unavailable", "ts": ts},
		}
	}

	return ChargeResult{
		Success:     true,
		ProviderRef: "pay_" + ref,
		RawResponse: map[string]interface{}{"status": "approved", "ts": ts},
	}
}
