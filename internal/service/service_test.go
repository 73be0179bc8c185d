package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/amrita-prog/Paynion-Project/internal/auth"
	"github.com/amrita-prog/Paynion-Project/internal/middleware"
	"github.com/amrita-prog/Paynion-Project/internal/ocr"
	"github.com/amrita-prog/Paynion-Project/internal/settlement"
	"github.com/amrita-prog/Paynion-Project/internal/storage/sqlite"
)

// testUserHeader names the caller for testAuthInterceptor.
const testUserHeader = "X-Test-User"

// testAuthInterceptor puts the user named in testUserHeader into the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if userID := req.Header().Get(testUserHeader); userID != "" {
				ctx = middleware.WithUser(ctx, userID, "")
			}
			return next(ctx, req)
		}
	}
}

// as builds a request made by userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, userID)
	return req
}

type testEnv struct {
	store *sqlite.SQLiteStore
	jwt   *auth.JWTManager

	auth        *AuthServiceClient
	groups      *GroupServiceClient
	expenses    *ExpenseServiceClient
	bills       *BillServiceClient
	settlements *SettlementServiceClient
	payments    *PaymentServiceClient
}

// newTestEnv serves every service against a temp-dir database. Bills are "recognized"
// by reading the uploaded bytes as text.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	parser := ocr.NewParser(ocr.RecognizerFunc(func(ctx context.Context, path string) (string, error) {
		data, err := os.ReadFile(path)
		return string(data), err
	}))

	opts := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		testAuthInterceptor(),
		middleware.LoggingInterceptor(nil),
	)
	mux := http.NewServeMux()
	mux.Handle(NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, nil), opts))
	mux.Handle(NewGroupServiceHandler(NewGroupService(store), opts))
	mux.Handle(NewExpenseServiceHandler(NewExpenseService(store), opts))
	mux.Handle(NewBillServiceHandler(NewBillService(parser, 1024), opts))
	mux.Handle(NewSettlementServiceHandler(NewSettlementService(store, settlement.NewLifecycle(store)), opts))
	mux.Handle(NewPaymentServiceHandler(NewPaymentService(store), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:       store,
		jwt:         jwtManager,
		auth:        NewAuthServiceClient(server.Client(), server.URL),
		groups:      NewGroupServiceClient(server.Client(), server.URL),
		expenses:    NewExpenseServiceClient(server.Client(), server.URL),
		bills:       NewBillServiceClient(server.Client(), server.URL),
		settlements: NewSettlementServiceClient(server.Client(), server.URL),
		payments:    NewPaymentServiceClient(server.Client(), server.URL),
	}
}

// register creates an account named name with the email name@example.com.
func (e *testEnv) register(t *testing.T, name string) User {
	t.Helper()
	resp, err := e.auth.Register.CallUnary(context.Background(), connect.NewRequest(&RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	require.NoError(t, err)
	return resp.Msg.User
}

// group creates a group owned by owner with the other users as members.
func (e *testEnv) group(t *testing.T, owner User, members ...User) Group {
	t.Helper()
	emails := make([]string, 0, len(members))
	for _, m := range members {
		emails = append(emails, m.Email)
	}
	resp, err := e.groups.CreateGroup.CallUnary(context.Background(), as(owner.ID, &CreateGroupRequest{
		Title:        "Goa Trip",
		MemberEmails: emails,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

// setUPI gives user a UPI id.
func (e *testEnv) setUPI(t *testing.T, user User, upiID string) {
	t.Helper()
	_, err := e.auth.UpdateProfile.CallUnary(context.Background(), as(user.ID, &UpdateProfileRequest{UPIID: &upiID}))
	require.NoError(t, err)
}

func requireCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}
