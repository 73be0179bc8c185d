package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/settlement"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
	"github.com/amrita-prog/Paynion-Project/pkg/money"
)

var (
	errReceiverNoUPI  = errors.New("receiver has not set up a UPI id")
	errPayYourself    = errors.New("cannot pay yourself")
	errInvalidOutcome = errors.New("status must be SUCCESS or FAILED")
)

// PaymentService implements the Connect PaymentService.
type PaymentService struct {
	store storage.Store
}

var _ PaymentServiceHandler = (*PaymentService)(nil)

// NewPaymentService creates a PaymentService.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// InitiateUPIPayment records a Pending payment from the caller to the receiver and
// returns the UPI link that opens the caller's payment app.
func (s *PaymentService) InitiateUPIPayment(ctx context.Context, req *connect.Request[InitiateUPIPaymentRequest]) (*connect.Response[InitiateUPIPaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	amount := money.Round(req.Msg.Amount.Decimal)
	slog.Info("InitiateUPIPayment request received",
		"payer_id", userID,
		"receiver_id", req.Msg.ReceiverID,
		"amount", money.Format(amount),
	)

	if !amount.IsPositive() {
		return nil, invalidArgument(fmt.Errorf("amount must be greater than zero"))
	}
	if req.Msg.ReceiverID == userID {
		return nil, invalidArgument(errPayYourself)
	}

	receiver, err := s.store.GetUserByID(ctx, req.Msg.ReceiverID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if receiver.UPIID == "" {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errReceiverNoUPI)
	}

	payment := &models.Payment{
		PayerID:    userID,
		ReceiverID: receiver.ID,
		Amount:     amount,
		UPIID:      receiver.UPIID,
		Status:     models.PaymentPending,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("InitiateUPIPayment failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("UPI payment initiated", "payment_id", payment.ID)
	return connect.NewResponse(&InitiateUPIPaymentResponse{
		Payment: toPayment(payment),
		UPILink: settlement.PaymentLink(receiver.UPIID, receiver.PayeeName(), amount),
	}), nil
}

// UpdatePaymentStatus records the outcome the payer's UPI app reported. Only Pending
// payments move, and only the payer may move them.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, req *connect.Request[UpdatePaymentStatusRequest]) (*connect.Response[PaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdatePaymentStatus request received",
		"payment_id", req.Msg.PaymentID,
		"status", req.Msg.Status,
	)

	to := models.PaymentStatus(strings.ToUpper(req.Msg.Status))
	if to != models.PaymentSuccess && to != models.PaymentFailed {
		return nil, invalidArgument(errInvalidOutcome)
	}
	ref := strings.TrimSpace(req.Msg.TransactionRef)

	var payment *models.Payment
	err = s.store.InTx(ctx, func(q storage.Queries) error {
		p, err := q.GetPayment(ctx, req.Msg.PaymentID)
		if err != nil {
			return err
		}
		if p.PayerID != userID {
			return errNotPaymentOwner
		}
		if p.Status != models.PaymentPending {
			return connect.NewError(connect.CodeFailedPrecondition,
				fmt.Errorf("payment is already %s", p.Status))
		}
		if err := q.UpdatePaymentStatus(ctx, p.ID, models.PaymentPending, to, ref); err != nil {
			return err
		}
		p.Status = to
		p.TransactionRef = ref
		payment = p
		return nil
	})
	if err != nil {
		slog.Warn("UpdatePaymentStatus failed", "payment_id", req.Msg.PaymentID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment status updated", "payment_id", payment.ID, "status", payment.Status)
	return connect.NewResponse(&PaymentResponse{Payment: toPayment(payment)}), nil
}
