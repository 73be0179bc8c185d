package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/settlement"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store     storage.Store
	lifecycle *settlement.Lifecycle
}

var _ SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a SettlementService.
func NewSettlementService(store storage.Store, lifecycle *settlement.Lifecycle) *SettlementService {
	return &SettlementService{store: store, lifecycle: lifecycle}
}

// ListSettlements reconciles the group and returns all of its settlements, with
// confirmed ones included, together with the current balances.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID, "user_id", userID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	result, err := s.lifecycle.Reconcile(ctx, group.ID)
	if err != nil {
		slog.Error("Reconcile failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	all, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]Settlement, 0, len(all))
	for _, st := range all {
		out = append(out, settlementFor(st, userID, users))
	}

	slog.Info("ListSettlements successful",
		"group_id", group.ID,
		"active", len(result.Active),
		"created", result.Created,
		"deleted", result.Deleted,
	)
	return connect.NewResponse(&ListSettlementsResponse{
		Settlements: out,
		Balances:    toBalances(result.Balances, users),
	}), nil
}

// RequestPayment marks a Pending settlement as paid by the caller.
func (s *SettlementService) RequestPayment(ctx context.Context, req *connect.Request[RequestPaymentRequest]) (*connect.Response[SettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RequestPayment request received",
		"settlement_id", req.Msg.SettlementID,
		"payment_mode", req.Msg.PaymentMode,
	)

	mode := models.PaymentMode(strings.ToUpper(req.Msg.PaymentMode))
	st, err := s.lifecycle.RequestPayment(ctx, req.Msg.SettlementID, userID, mode)
	if err != nil {
		slog.Warn("RequestPayment failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, toConnectError(err)
	}
	return s.respond(ctx, st, userID)
}

// ConfirmPayment settles a requested payment. Only the receiver may confirm.
func (s *SettlementService) ConfirmPayment(ctx context.Context, req *connect.Request[SettlementActionRequest]) (*connect.Response[SettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ConfirmPayment request received", "settlement_id", req.Msg.SettlementID)

	st, err := s.lifecycle.ConfirmPayment(ctx, req.Msg.SettlementID, userID)
	if err != nil {
		slog.Warn("ConfirmPayment failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, toConnectError(err)
	}
	return s.respond(ctx, st, userID)
}

// RejectPayment returns a requested payment to Pending. Only the receiver may reject.
func (s *SettlementService) RejectPayment(ctx context.Context, req *connect.Request[SettlementActionRequest]) (*connect.Response[SettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RejectPayment request received", "settlement_id", req.Msg.SettlementID)

	st, err := s.lifecycle.RejectPayment(ctx, req.Msg.SettlementID, userID)
	if err != nil {
		slog.Warn("RejectPayment failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, toConnectError(err)
	}
	return s.respond(ctx, st, userID)
}

// GetPaymentHistory lists confirmed payments, newest first.
func (s *SettlementService) GetPaymentHistory(ctx context.Context, req *connect.Request[GetPaymentHistoryRequest]) (*connect.Response[GetPaymentHistoryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetPaymentHistory request received", "user_id", userID, "group_id", req.Msg.GroupID)

	var entries []*models.PaymentHistory
	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
			return nil, toConnectError(err)
		}
		entries, err = s.store.ListPaymentHistoryByGroup(ctx, req.Msg.GroupID)
	} else {
		entries, err = s.store.ListPaymentHistoryByUser(ctx, userID)
	}
	if err != nil {
		slog.Error("GetPaymentHistory failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]PaymentHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryEntry(e))
	}
	return connect.NewResponse(&GetPaymentHistoryResponse{Entries: out}), nil
}

func (s *SettlementService) respond(ctx context.Context, st *models.Settlement, userID string) (*connect.Response[SettlementResponse], error) {
	users, err := s.store.GetUsersByIDs(ctx, []string{st.PayerID, st.ReceiverID})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SettlementResponse{Settlement: settlementFor(st, userID, users)}), nil
}

// settlementFor converts st for viewer. The payer of an unpaid settlement gets a UPI
// link when the receiver has a UPI id.
func settlementFor(st *models.Settlement, viewer string, users map[string]*models.User) Settlement {
	out := toSettlement(st, users)
	if st.PayerID != viewer || st.Status != models.StatusPending {
		return out
	}
	if receiver, ok := users[st.ReceiverID]; ok {
		out.UPILink = settlement.PaymentLink(receiver.UPIID, receiver.PayeeName(), st.Amount)
	}
	return out
}
