// Package billing sells credits: checkout sessions out, webhook
// fulfillment in.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
	"leadblitz/internal/services/credits"
)

// CreditPackage is a one-time credit purchase option.
type CreditPackage struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Credits    int    `json:"credits"`
	PriceCents int    `json:"price_cents"`
}

var packages = []CreditPackage{
	{ID: "starter", Name: "Starter", Credits: 100, PriceCents: 1500},
	{ID: "professional", Name: "Professional", Credits: 500, PriceCents: 5900},
	{ID: "pro_team", Name: "Pro Team", Credits: 2000, PriceCents: 19900},
	{ID: "founding_member", Name: "Founding Member", Credits: 2000, PriceCents: 9900},
}

func Packages() []CreditPackage {
	out := make([]CreditPackage, len(packages))
	copy(out, packages)
	return out
}

func PackageByID(id string) (CreditPackage, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return CreditPackage{}, false
}

// CheckoutParams is what the payment provider needs to build a session.
type CheckoutParams struct {
	UserID      string
	ProductName string
	AmountCents int
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is the provider's created session.
type CheckoutSession struct {
	ID  string
	URL string
}

// CompletedSession is the webhook's view of a finished checkout.
type CompletedSession struct {
	ID       string
	Metadata map[string]string
}

// CheckoutClient is the payment provider surface billing needs.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
}

var ErrUnknownPackage = errors.New("unknown credit package")

type Service struct {
	checkout CheckoutClient
	credits  *credits.Service
	payments ports.PaymentRepository
}

func New(checkout CheckoutClient, cr *credits.Service, payments ports.PaymentRepository) *Service {
	return &Service{checkout: checkout, credits: cr, payments: payments}
}

// CreateCheckout opens a payment session for one credit package. Everything
// fulfillment needs later travels in the session metadata.
func (s *Service) CreateCheckout(ctx context.Context, userID, packageID, successURL, cancelURL string) (CheckoutSession, error) {
	pkg, ok := PackageByID(packageID)
	if !ok {
		return CheckoutSession{}, fmt.Errorf("%w: %s", ErrUnknownPackage, packageID)
	}
	return s.checkout.CreateCheckoutSession(ctx, CheckoutParams{
		UserID:      userID,
		ProductName: pkg.Name + " credit pack",
		AmountCents: pkg.PriceCents,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		Metadata: map[string]string{
			"user_id":      userID,
			"package_id":   pkg.ID,
			"credits":      strconv.Itoa(pkg.Credits),
			"plan_name":    pkg.Name,
			"amount_cents": strconv.Itoa(pkg.PriceCents),
		},
	})
}

// FulfillCheckout credits the purchase recorded in a completed session.
// Replayed webhooks are no-ops: the session id is the idempotency key.
func (s *Service) FulfillCheckout(ctx context.Context, session CompletedSession) error {
	userID := session.Metadata["user_id"]
	if userID == "" {
		return fmt.Errorf("session %s has no user_id metadata", session.ID)
	}
	amount, err := strconv.Atoi(session.Metadata["credits"])
	if err != nil || amount <= 0 {
		return fmt.Errorf("session %s has bad credits metadata %q", session.ID, session.Metadata["credits"])
	}

	seen, err := s.credits.HasProcessedRef(ctx, session.ID)
	if err != nil {
		return err
	}
	if seen {
		zap.L().Info("checkout already fulfilled", zap.String("session_id", session.ID))
		return nil
	}

	planName := session.Metadata["plan_name"]
	if _, err := s.credits.Credit(ctx, userID, amount,
		session.ID, fmt.Sprintf("Purchased %s (%d credits)", planName, amount)); err != nil {
		if errors.Is(err, ports.ErrDuplicateTransaction) {
			// Lost the race against a concurrent delivery of the same event.
			return nil
		}
		return err
	}

	amountCents, _ := strconv.Atoi(session.Metadata["amount_cents"])
	payment := domain.Payment{
		ID:               uuid.NewString(),
		UserID:           userID,
		SessionID:        session.ID,
		AmountCents:      amountCents,
		CreditsPurchased: amount,
		PlanName:         planName,
		Status:           "completed",
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		zap.L().Error("payment record failed after credit",
			zap.String("session_id", session.ID), zap.Error(err))
	}
	return nil
}
