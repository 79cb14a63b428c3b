package domain

import "time"

// Core domain models used internally. JSON tags match the persisted JSONB
// shapes and the API payloads, so keep them stable.

type Lead struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	CampaignID string `json:"campaign_id"`

	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Website     string  `json:"website"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`

	Score          *int            `json:"score,omitempty"`
	HeuristicScore *int            `json:"heuristic_score,omitempty"`
	AIScore        *int            `json:"ai_score,omitempty"`
	ScoreBreakdown *CombinedResult `json:"score_breakdown,omitempty"`
	Technographics *TechResult     `json:"technographics,omitempty"`

	Stage        string     `json:"stage"` // new|reviewing|qualified|rejected
	Notes        string     `json:"notes"`
	LastScoredAt *time.Time `json:"last_scored_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Campaign struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	BusinessType  string    `json:"business_type"`
	Location      string    `json:"location"`
	NextPageToken string    `json:"next_page_token,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Place is one candidate business returned by the places provider.
type Place struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Website     string  `json:"website"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// PlacePage is one page of search results plus the opaque continuation token.
type PlacePage struct {
	Places        []Place `json:"places"`
	NextPageToken string  `json:"next_page_token,omitempty"`
}

// ScoreCacheEntry is the content-addressed scoring result for one normalized
// URL. At most one row per URLHash; overwritten on re-score, never versioned.
type ScoreCacheEntry struct {
	URLHash       string           `json:"url_hash"`
	NormalizedURL string           `json:"normalized_url"`
	Heuristic     *HeuristicResult `json:"heuristic_result,omitempty"`
	AI            *AIResult        `json:"ai_result,omitempty"`
	FinalScore    int              `json:"final_score"`
	Confidence    float64          `json:"confidence"`
	FetchedAt     time.Time        `json:"fetched_at"`
}

// UserCredits is the per-user balance row.
// Invariant: Balance == TotalPurchased - TotalUsed after every mutation.
type UserCredits struct {
	UserID           string    `json:"user_id"`
	Balance          int       `json:"balance"`
	TotalPurchased   int       `json:"total_purchased"`
	TotalUsed        int       `json:"total_used"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TxPurchase            TransactionType = "purchase"
	TxUsage               TransactionType = "usage"
	TxAdminGrant          TransactionType = "admin_grant"
	TxAdminSet            TransactionType = "admin_set"
	TxSubscriptionAccrual TransactionType = "subscription_accrual"
)

// CreditTransaction is an immutable ledger entry. Negative Amount = debit.
// ExternalRef carries the payment session/event id used for idempotency.
type CreditTransaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Amount       int             `json:"amount"`
	Type         TransactionType `json:"transaction_type"`
	Description  string          `json:"description"`
	ExternalRef  string          `json:"external_ref,omitempty"`
	BalanceAfter int             `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreditState is the per-user disbursement cursor for subscription drip.
// WeeksIssued counts the weekly batches already issued this period (0-4).
type CreditState struct {
	UserID       string     `json:"user_id"`
	LastIssuedAt *time.Time `json:"last_issued_at,omitempty"`
	WeeksIssued  int        `json:"weeks_issued"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type SubscriptionStatus string

const (
	SubActive    SubscriptionStatus = "active"
	SubCanceling SubscriptionStatus = "canceling"
	SubCanceled  SubscriptionStatus = "canceled"
	SubPastDue   SubscriptionStatus = "past_due"
)

type UserSubscription struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"user_id"`
	PackageID            string             `json:"package_id"`
	Status               SubscriptionStatus `json:"status"`
	StripeSubscriptionID string             `json:"stripe_subscription_id,omitempty"`
	CurrentPeriodStart   time.Time          `json:"current_period_start"`
	CurrentPeriodEnd     time.Time          `json:"current_period_end"`
	CancelAtPeriodEnd    bool               `json:"cancel_at_period_end"`
}

type Payment struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	SessionID        string    `json:"session_id"`
	AmountCents      int       `json:"amount_cents"`
	CreditsPurchased int       `json:"credits_purchased"`
	PlanName         string    `json:"plan_name"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}
