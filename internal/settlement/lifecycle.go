// Package settlement keeps a group's persisted settlements in line with its balances and
// moves individual settlements through their lifecycle:
//
//	PENDING --RequestPayment--> PAID_REQUESTED --ConfirmPayment--> SETTLED
//	   ^                              |
//	   +--------RejectPayment---------+
//
// Reconcile replaces stale Pending records with fresh proposals from the planner and
// never touches PaidRequested or Settled records.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amrita-prog/Paynion-Project/internal/calculator"
	"github.com/amrita-prog/Paynion-Project/internal/metrics"
	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
	"github.com/amrita-prog/Paynion-Project/pkg/money"
)

var (
	ErrNotPayer           = errors.New("only the payer can mark a settlement as paid")
	ErrNotReceiver        = errors.New("only the receiver can confirm or reject a payment")
	ErrInvalidPaymentMode = errors.New("payment mode must be UPI or CASH")
	ErrInvalidTransition  = errors.New("settlement is not in the required state")
	ErrUnbalanced         = errors.New("group balances do not sum to zero")
)

// Lifecycle reconciles and transitions settlements.
type Lifecycle struct {
	store storage.Store
	now   func() time.Time
}

// NewLifecycle creates a Lifecycle backed by store.
func NewLifecycle(store storage.Store) *Lifecycle {
	return &Lifecycle{store: store, now: time.Now}
}

// ReconcileResult is the outcome of Reconcile.
type ReconcileResult struct {
	// Balances are the members' balances after confirmed settlements.
	Balances []calculator.MemberBalance

	// Active are the group's Pending and PaidRequested settlements after reconciliation,
	// in creation order.
	Active []*models.Settlement

	Created int
	Deleted int
}

// Reconcile brings the group's active settlements in line with its current balances.
// Pending records that no longer match a proposal are deleted, and proposals for pairs
// without an active record become new Pending records. Everything runs in one
// transaction, so concurrent calls for the same group are serialized and a failure
// leaves the stored settlements unchanged.
func (l *Lifecycle) Reconcile(ctx context.Context, groupID string) (*ReconcileResult, error) {
	var result ReconcileResult
	err := l.store.InTx(ctx, func(q storage.Queries) error {
		result = ReconcileResult{}

		group, err := q.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		balances, err := GroupBalances(ctx, q, group)
		if err != nil {
			return err
		}
		if total := calculator.NetTotal(balances); !total.IsZero() {
			return fmt.Errorf("%w: off by %s", ErrUnbalanced, total.String())
		}
		result.Balances = balances

		active, err := q.ListSettlementsByGroup(ctx, groupID, models.ActiveStatuses...)
		if err != nil {
			return err
		}

		stale, missing := diff(calculator.PlanSettlements(balances), active)
		for _, s := range stale {
			if err := q.DeleteSettlement(ctx, s.ID, models.StatusPending); err != nil {
				return err
			}
			result.Deleted++
		}

		now := l.now().Unix()
		for _, p := range missing {
			err := q.CreateSettlement(ctx, &models.Settlement{
				GroupID:    groupID,
				PayerID:    p.From,
				ReceiverID: p.To,
				Amount:     p.Amount,
				Status:     models.StatusPending,
				CreatedAt:  now,
			})
			if err != nil {
				return err
			}
			result.Created++
		}

		result.Active, err = q.ListSettlementsByGroup(ctx, groupID, models.ActiveStatuses...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile group %s: %w", groupID, err)
	}

	metrics.SettlementsReconciled.WithLabelValues("created").Add(float64(result.Created))
	metrics.SettlementsReconciled.WithLabelValues("deleted").Add(float64(result.Deleted))
	if result.Created > 0 || result.Deleted > 0 {
		slog.Info("Settlements reconciled",
			"group_id", groupID,
			"created", result.Created,
			"deleted", result.Deleted,
			"active", len(result.Active),
		)
	}
	return &result, nil
}

// diff splits the work of a reconciliation. A Pending record is stale unless a proposal
// has the same pair and amount; PaidRequested records always stay. A proposal is
// missing when no surviving active record covers its pair.
func diff(proposals []calculator.Proposal, active []*models.Settlement) (stale []*models.Settlement, missing []calculator.Proposal) {
	type pair struct{ payer, receiver string }

	proposed := make(map[pair]decimal.Decimal, len(proposals))
	for _, p := range proposals {
		proposed[pair{p.From, p.To}] = p.Amount
	}

	covered := make(map[pair]bool, len(active))
	for _, s := range active {
		key := pair{s.PayerID, s.ReceiverID}
		if s.Status == models.StatusPending {
			amount, ok := proposed[key]
			if !ok || !amount.Equal(s.Amount) {
				stale = append(stale, s)
				continue
			}
		}
		covered[key] = true
	}

	for _, p := range proposals {
		if !covered[pair{p.From, p.To}] {
			missing = append(missing, p)
		}
	}
	return stale, missing
}

// GroupBalances computes the group's balances from its expenses and applies the
// settlements that were already confirmed.
func GroupBalances(ctx context.Context, q storage.Queries, group *models.Group) ([]calculator.MemberBalance, error) {
	expenses, err := q.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	settled, err := q.ListSettlementsByGroup(ctx, group.ID, models.StatusSettled)
	if err != nil {
		return nil, err
	}

	var (
		forBalance []calculator.ExpenseForBalance
		splits     []calculator.SplitForBalance
	)
	for _, e := range expenses {
		forBalance = append(forBalance, calculator.ExpenseForBalance{ID: e.ID, PaidBy: e.PaidBy, Amount: e.Amount})
		for _, s := range e.Splits {
			splits = append(splits, calculator.SplitForBalance{ExpenseID: e.ID, UserID: s.UserID, Amount: s.Amount})
		}
	}

	transfers := make([]calculator.Transfer, 0, len(settled))
	for _, s := range settled {
		transfers = append(transfers, calculator.Transfer{From: s.PayerID, To: s.ReceiverID, Amount: s.Amount})
	}

	balances := calculator.ComputeBalances(group.Members, forBalance, splits)
	return calculator.ApplyTransfers(balances, transfers), nil
}

// RequestPayment records that the payer has paid by mode and asks the receiver to confirm.
func (l *Lifecycle) RequestPayment(ctx context.Context, settlementID, actorID string, mode models.PaymentMode) (*models.Settlement, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPaymentMode, mode)
	}
	return l.transition(ctx, settlementID, "request", models.StatusPending, func(s *models.Settlement) error {
		if s.PayerID != actorID {
			return ErrNotPayer
		}
		s.Status = models.StatusPaidRequested
		s.PaymentMode = mode
		s.PaidRequestedAt = l.now().Unix()
		return nil
	}, nil)
}

// ConfirmPayment settles a requested payment, appends it to the payment history and
// marks the group as settled now.
func (l *Lifecycle) ConfirmPayment(ctx context.Context, settlementID, actorID string) (*models.Settlement, error) {
	var confirmedAt int64
	return l.transition(ctx, settlementID, "confirm", models.StatusPaidRequested, func(s *models.Settlement) error {
		if s.ReceiverID != actorID {
			return ErrNotReceiver
		}
		confirmedAt = l.now().Unix()
		s.Status = models.StatusSettled
		s.SettledAt = confirmedAt
		return nil
	}, func(q storage.Queries, s *models.Settlement) error {
		err := q.CreatePaymentHistory(ctx, &models.PaymentHistory{
			SettlementID: s.ID,
			GroupID:      s.GroupID,
			PaidBy:       s.PayerID,
			ReceivedBy:   s.ReceiverID,
			Amount:       s.Amount,
			PaymentMode:  s.PaymentMode,
			RequestedAt:  s.PaidRequestedAt,
			ConfirmedAt:  confirmedAt,
		})
		if err != nil {
			return err
		}
		return q.SetGroupLastSettled(ctx, s.GroupID, confirmedAt)
	})
}

// RejectPayment sends a requested payment back to Pending so the payer can request again.
func (l *Lifecycle) RejectPayment(ctx context.Context, settlementID, actorID string) (*models.Settlement, error) {
	return l.transition(ctx, settlementID, "reject", models.StatusPaidRequested, func(s *models.Settlement) error {
		if s.ReceiverID != actorID {
			return ErrNotReceiver
		}
		s.Status = models.StatusPending
		s.PaymentMode = ""
		s.PaidRequestedAt = 0
		return nil
	}, nil)
}

// transition loads the settlement, checks it is in from, lets apply validate the actor
// and mutate the record, and writes it back with a conditional update. after runs in
// the same transaction. Any failure leaves the stored record untouched.
func (l *Lifecycle) transition(
	ctx context.Context,
	settlementID, name string,
	from models.SettlementStatus,
	apply func(s *models.Settlement) error,
	after func(q storage.Queries, s *models.Settlement) error,
) (*models.Settlement, error) {
	var updated *models.Settlement
	err := l.store.InTx(ctx, func(q storage.Queries) error {
		s, err := q.GetSettlement(ctx, settlementID)
		if err != nil {
			return err
		}
		if s.Status != from {
			return fmt.Errorf("%w: settlement is %s, want %s", ErrInvalidTransition, s.Status, from)
		}
		if err := apply(s); err != nil {
			return err
		}
		if err := q.UpdateSettlement(ctx, s, from); err != nil {
			return err
		}
		if after != nil {
			if err := after(q, s); err != nil {
				return err
			}
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SettlementTransitions.WithLabelValues(name).Inc()
	slog.Info("Settlement transition",
		"settlement_id", updated.ID,
		"group_id", updated.GroupID,
		"transition", name,
		"status", updated.Status,
		"amount", money.Format(updated.Amount),
	)
	return updated, nil
}
