package payment

import (
	"context"
	"fmt"
	"sync"
)

// FakeGateway is an in-memory Gateway for tests. Sessions start unsettled;
// tests settle them with Succeed or Fail before the reconciler verifies.
type FakeGateway struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*fakeSession

	CreateErr error
	VerifyErr error
}

type fakeSession struct {
	req       CheckoutRequest
	paymentID string
	confirmed bool
	reason    string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{sessions: map[string]*fakeSession{}}
}

func (g *FakeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	if req.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	token := fmt.Sprintf("tok_%03d", g.seq)
	g.sessions[token] = &fakeSession{req: req, reason: "payment_failed"}

	return &CheckoutSession{
		SessionToken: token,
		CheckoutURL:  "https://gateway.test/checkout/" + token,
	}, nil
}

func (g *FakeGateway) VerifyPayment(ctx context.Context, sessionToken string) (*Verification, error) {
	if g.VerifyErr != nil {
		return nil, g.VerifyErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[sessionToken]
	if !ok {
		return nil, ErrSessionNotFound
	}

	verification := &Verification{
		Confirmed:   session.confirmed,
		PaymentID:   session.paymentID,
		AmountCents: session.req.AmountCents,
		Currency:    normalizeCurrency(session.req.Currency),
	}
	if !session.confirmed {
		verification.FailureReason = session.reason
	}
	return verification, nil
}

// Succeed marks the session as paid with the given gateway payment ID.
func (g *FakeGateway) Succeed(sessionToken, paymentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if session, ok := g.sessions[sessionToken]; ok {
		session.confirmed = true
		session.paymentID = paymentID
	}
}

// Fail marks the session as failed with a reason.
func (g *FakeGateway) Fail(sessionToken, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if session, ok := g.sessions[sessionToken]; ok {
		session.confirmed = false
		if reason != "" {
			session.reason = reason
		}
	}
}

// LastRequest returns the checkout request recorded for a session token.
func (g *FakeGateway) LastRequest(sessionToken string) (CheckoutRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[sessionToken]
	if !ok {
		return CheckoutRequest{}, false
	}
	return session.req, true
}
