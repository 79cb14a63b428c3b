package credits

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

// Subscription plans: monthly credit allowance and price.
type Plan struct {
	Credits    int
	PriceCents int
}

var plans = map[string]Plan{
	"starter_monthly":      {Credits: 250, PriceCents: 999},
	"professional_monthly": {Credits: 1000, PriceCents: 3999},
	"enterprise_monthly":   {Credits: 5000, PriceCents: 12999},
}

func PlanByID(id string) (Plan, bool) {
	p, ok := plans[id]
	return p, ok
}

const weeklyBatches = 4

// WeeklyCredits splits a monthly allowance into four batches, distributing
// the remainder across the earliest weeks. The batches always sum to total.
func WeeklyCredits(total int) []int {
	base := total / weeklyBatches
	rem := total % weeklyBatches
	out := make([]int, weeklyBatches)
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// currentWeek maps elapsed period time to a 0-3 week index.
func currentWeek(periodStart, now time.Time) int {
	days := int(now.Sub(periodStart).Hours() / 24)
	switch {
	case days >= 21:
		return 3
	case days >= 14:
		return 2
	case days >= 7:
		return 1
	default:
		return 0
	}
}

// Drip issues the weekly credit batches for active subscriptions. Runs are
// idempotent: each week's batch is issued at most once per period.
type Drip struct {
	credits *Service
	repo    ports.CreditRepository
	subs    ports.SubscriptionRepository
	now     func() time.Time
}

func NewDrip(credits *Service, repo ports.CreditRepository, subs ports.SubscriptionRepository) *Drip {
	return &Drip{credits: credits, repo: repo, subs: subs, now: time.Now}
}

// eligible filters out lapsed or unknown subscriptions.
func (d *Drip) eligible(sub domain.UserSubscription, now time.Time) bool {
	if sub.Status != domain.SubActive && sub.Status != domain.SubCanceling {
		return false
	}
	if now.After(sub.CurrentPeriodEnd) {
		return false
	}
	_, known := PlanByID(sub.PackageID)
	return known
}

// IssueDue issues every not-yet-issued weekly batch up to the current week
// for one subscription, and returns the total credits issued.
func (d *Drip) IssueDue(ctx context.Context, sub domain.UserSubscription) (int, error) {
	now := d.now()
	if !d.eligible(sub, now) {
		return 0, nil
	}
	plan, _ := PlanByID(sub.PackageID)
	batches := WeeklyCredits(plan.Credits)
	due := currentWeek(sub.CurrentPeriodStart, now) + 1
	if due > weeklyBatches {
		due = weeklyBatches
	}

	issued := 0
	err := d.repo.WithUser(ctx, sub.UserID, func(txn ports.CreditTxn) error {
		st := txn.State()
		if st.WeeksIssued >= weeklyBatches || st.WeeksIssued >= due {
			return nil
		}
		c := txn.Credits()
		for week := st.WeeksIssued; week < due; week++ {
			amount := batches[week]
			c.Balance += amount
			c.TotalPurchased += amount
			issued += amount
			txn.Append(domain.CreditTransaction{
				ID:           uuid.NewString(),
				UserID:       sub.UserID,
				Amount:       amount,
				Type:         domain.TxSubscriptionAccrual,
				Description:  batchDescription(amount, week),
				BalanceAfter: c.Balance,
			})
		}
		st.WeeksIssued = due
		t := now
		st.LastIssuedAt = &t
		return nil
	})
	if err != nil {
		return 0, err
	}
	if issued > 0 {
		zap.L().Info("subscription credits issued",
			zap.String("user_id", sub.UserID),
			zap.String("package_id", sub.PackageID),
			zap.Int("credits", issued))
	}
	return issued, nil
}

// IssueInitial hands out the first weekly batch right after checkout so a
// new subscriber is not empty-handed until the first drip run.
func (d *Drip) IssueInitial(ctx context.Context, sub domain.UserSubscription) (int, error) {
	plan, ok := PlanByID(sub.PackageID)
	if !ok {
		return 0, fmt.Errorf("unknown package %q", sub.PackageID)
	}
	batches := WeeklyCredits(plan.Credits)

	issued := 0
	err := d.repo.WithUser(ctx, sub.UserID, func(txn ports.CreditTxn) error {
		st := txn.State()
		if st.WeeksIssued > 0 {
			return nil
		}
		c := txn.Credits()
		amount := batches[0]
		c.Balance += amount
		c.TotalPurchased += amount
		issued = amount
		txn.Append(domain.CreditTransaction{
			ID:           uuid.NewString(),
			UserID:       sub.UserID,
			Amount:       amount,
			Type:         domain.TxSubscriptionAccrual,
			Description:  batchDescription(amount, 0),
			BalanceAfter: c.Balance,
		})
		st.WeeksIssued = 1
		t := d.now()
		st.LastIssuedAt = &t
		return nil
	})
	return issued, err
}

// RunOnce walks every issuable subscription. Per-user failures are logged
// and skipped so one bad row never stalls the sweep.
func (d *Drip) RunOnce(ctx context.Context) {
	subs, err := d.subs.ListIssuable(ctx)
	if err != nil {
		zap.L().Error("drip: listing subscriptions failed", zap.Error(err))
		return
	}
	for _, sub := range subs {
		if _, err := d.IssueDue(ctx, sub); err != nil {
			zap.L().Error("drip: issue failed",
				zap.String("user_id", sub.UserID), zap.Error(err))
		}
	}
}

func batchDescription(amount, week int) string {
	label := fmt.Sprintf("week %d", week+1)
	if week == weeklyBatches-1 {
		label = "final batch"
	}
	return fmt.Sprintf("Weekly credit batch: %d credits (%s)", amount, label)
}
