package service

import (
	"github.com/amrita-prog/Paynion-Project/internal/calculator"
	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/ocr"
	"github.com/amrita-prog/Paynion-Project/pkg/money"
)

// Wire messages. Amounts are money.Amount so they encode as plain two-decimal numbers.

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	FullName    string `json:"fullName,omitempty"`
	UPIID       string `json:"upiId,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UPIID       string `json:"upiId,omitempty"`
}

type Group struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	CreatedBy     string   `json:"createdBy"`
	Members       []Member `json:"members"`
	CreatedAt     int64    `json:"createdAt"`
	LastSettledAt int64    `json:"lastSettledAt,omitempty"`
}

type Balance struct {
	UserID      string       `json:"userId"`
	DisplayName string       `json:"displayName"`
	Paid        money.Amount `json:"paid"`
	Owed        money.Amount `json:"owed"`
	Net         money.Amount `json:"net"`
}

type Share struct {
	UserID string       `json:"userId"`
	Amount money.Amount `json:"amount"`
}

type Expense struct {
	ID          string       `json:"id"`
	GroupID     string       `json:"groupId"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	PaidBy      string       `json:"paidBy"`
	SplitType   string       `json:"splitType"`
	Splits      []Share      `json:"splits"`
	CreatedAt   int64        `json:"createdAt"`
}

type Settlement struct {
	ID              string       `json:"id"`
	GroupID         string       `json:"groupId"`
	PayerID         string       `json:"payerId"`
	PayerName       string       `json:"payerName"`
	ReceiverID      string       `json:"receiverId"`
	ReceiverName    string       `json:"receiverName"`
	Amount          money.Amount `json:"amount"`
	Status          string       `json:"status"`
	PaymentMode     string       `json:"paymentMode,omitempty"`
	CreatedAt       int64        `json:"createdAt"`
	PaidRequestedAt int64        `json:"paidRequestedAt,omitempty"`
	SettledAt       int64        `json:"settledAt,omitempty"`

	// UPILink is only set for the payer, and only when the receiver has a UPI id.
	UPILink string `json:"upiLink,omitempty"`
}

type PaymentHistoryEntry struct {
	ID           string       `json:"id"`
	SettlementID string       `json:"settlementId"`
	GroupID      string       `json:"groupId"`
	PaidBy       string       `json:"paidBy"`
	ReceivedBy   string       `json:"receivedBy"`
	Amount       money.Amount `json:"amount"`
	PaymentMode  string       `json:"paymentMode"`
	RequestedAt  int64        `json:"requestedAt"`
	ConfirmedAt  int64        `json:"confirmedAt"`
}

type Payment struct {
	ID             string       `json:"id"`
	PayerID        string       `json:"payerId"`
	ReceiverID     string       `json:"receiverId"`
	Amount         money.Amount `json:"amount"`
	UPIID          string       `json:"upiId"`
	Status         string       `json:"status"`
	TransactionRef string       `json:"transactionRef,omitempty"`
	CreatedAt      int64        `json:"createdAt"`
}

// AuthService

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type GetCurrentUserRequest struct{}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	FullName    *string `json:"fullName,omitempty"`
	UPIID       *string `json:"upiId,omitempty"`
}

type UserResponse struct {
	User User `json:"user"`
}

// GroupService

type CreateGroupRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"memberEmails"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID      string   `json:"groupId"`
	MemberEmails []string `json:"memberEmails"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

// ExpenseService

type Portion struct {
	UserID string       `json:"userId"`
	Value  money.Amount `json:"value"`
}

type Item struct {
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	AssignedTo  []string     `json:"assignedTo"`
}

type CreateExpenseRequest struct {
	GroupID     string       `json:"groupId"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`

	// PaidBy defaults to the caller.
	PaidBy    string `json:"paidBy"`
	SplitType string `json:"splitType"`

	// Participants defaults to every group member.
	Participants []string `json:"participants"`

	// Portions holds percentages or amounts for percentage and custom splits.
	Portions []Portion `json:"portions"`

	// Items and Subtotal are used by itemized splits.
	Items    []Item       `json:"items"`
	Subtotal money.Amount `json:"subtotal"`
}

type ExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

// BillService

type ParseBillRequest struct {
	Filename string `json:"filename"`
	// Content is the image or PDF, base64 in JSON.
	Content []byte `json:"content"`
}

type ParseBillResponse struct {
	Success bool          `json:"success"`
	Title   string        `json:"title"`
	Amount  *money.Amount `json:"amount"`
	RawText string        `json:"rawText"`
	Message string        `json:"message,omitempty"`
}

// SettlementService

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
	Balances    []Balance    `json:"balances"`
}

type RequestPaymentRequest struct {
	SettlementID string `json:"settlementId"`
	PaymentMode  string `json:"paymentMode"`
}

type SettlementActionRequest struct {
	SettlementID string `json:"settlementId"`
}

type SettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

type GetPaymentHistoryRequest struct {
	// GroupID limits the history to one group. Empty means every entry the caller
	// paid or received.
	GroupID string `json:"groupId"`
}

type GetPaymentHistoryResponse struct {
	Entries []PaymentHistoryEntry `json:"entries"`
}

// PaymentService

type InitiateUPIPaymentRequest struct {
	ReceiverID string       `json:"receiverId"`
	Amount     money.Amount `json:"amount"`
}

type InitiateUPIPaymentResponse struct {
	Payment Payment `json:"payment"`
	UPILink string  `json:"upiLink"`
}

type UpdatePaymentStatusRequest struct {
	PaymentID      string `json:"paymentId"`
	Status         string `json:"status"`
	TransactionRef string `json:"transactionRef"`
}

type PaymentResponse struct {
	Payment Payment `json:"payment"`
}

// Conversions from domain records.

func toUser(u *models.User) User {
	return User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		FullName:    u.FullName,
		UPIID:       u.UPIID,
		CreatedAt:   u.CreatedAt,
	}
}

func toGroup(g *models.Group, users map[string]*models.User) Group {
	members := make([]Member, 0, len(g.Members))
	for _, id := range g.Members {
		m := Member{ID: id}
		if u, ok := users[id]; ok {
			m.DisplayName = u.DisplayName
			m.UPIID = u.UPIID
		}
		members = append(members, m)
	}
	return Group{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		CreatedBy:     g.CreatedBy,
		Members:       members,
		CreatedAt:     g.CreatedAt,
		LastSettledAt: g.LastSettledAt,
	}
}

func toBalances(balances []calculator.MemberBalance, users map[string]*models.User) []Balance {
	out := make([]Balance, 0, len(balances))
	for _, b := range balances {
		out = append(out, Balance{
			UserID:      b.UserID,
			DisplayName: displayName(users, b.UserID),
			Paid:        money.NewAmount(b.Paid),
			Owed:        money.NewAmount(b.Owed),
			Net:         money.NewAmount(b.Net),
		})
	}
	return out
}

func toExpense(e *models.Expense) Expense {
	splits := make([]Share, 0, len(e.Splits))
	for _, s := range e.Splits {
		splits = append(splits, Share{UserID: s.UserID, Amount: money.NewAmount(s.Amount)})
	}
	return Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      money.NewAmount(e.Amount),
		PaidBy:      e.PaidBy,
		SplitType:   string(e.SplitType),
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
	}
}

func toSettlement(s *models.Settlement, users map[string]*models.User) Settlement {
	return Settlement{
		ID:              s.ID,
		GroupID:         s.GroupID,
		PayerID:         s.PayerID,
		PayerName:       displayName(users, s.PayerID),
		ReceiverID:      s.ReceiverID,
		ReceiverName:    displayName(users, s.ReceiverID),
		Amount:          money.NewAmount(s.Amount),
		Status:          string(s.Status),
		PaymentMode:     string(s.PaymentMode),
		CreatedAt:       s.CreatedAt,
		PaidRequestedAt: s.PaidRequestedAt,
		SettledAt:       s.SettledAt,
	}
}

func toHistoryEntry(h *models.PaymentHistory) PaymentHistoryEntry {
	return PaymentHistoryEntry{
		ID:           h.ID,
		SettlementID: h.SettlementID,
		GroupID:      h.GroupID,
		PaidBy:       h.PaidBy,
		ReceivedBy:   h.ReceivedBy,
		Amount:       money.NewAmount(h.Amount),
		PaymentMode:  string(h.PaymentMode),
		RequestedAt:  h.RequestedAt,
		ConfirmedAt:  h.ConfirmedAt,
	}
}

func toPayment(p *models.Payment) Payment {
	return Payment{
		ID:             p.ID,
		PayerID:        p.PayerID,
		ReceiverID:     p.ReceiverID,
		Amount:         money.NewAmount(p.Amount),
		UPIID:          p.UPIID,
		Status:         string(p.Status),
		TransactionRef: p.TransactionRef,
		CreatedAt:      p.CreatedAt,
	}
}

func toParseBillResponse(bill ocr.ParsedBill) *ParseBillResponse {
	resp := &ParseBillResponse{
		Success: bill.Success,
		Title:   bill.Title,
		RawText: bill.RawText,
		Message: bill.Message,
	}
	if bill.Amount != nil {
		amount := money.NewAmount(*bill.Amount)
		resp.Amount = &amount
	}
	return resp
}

func displayName(users map[string]*models.User, userID string) string {
	if u, ok := users[userID]; ok {
		return u.DisplayName
	}
	return ""
}
