package service

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amrita-prog/Paynion-Project/internal/export"
	"github.com/amrita-prog/Paynion-Project/internal/middleware"
)

func TestExportHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	asha, bilal, outsider := env.register(t, "asha"), env.register(t, "bilal"), env.register(t, "dev")
	g := env.group(t, asha, bilal)

	_, err := env.expenses.CreateExpense.CallUnary(ctx, as(asha.ID, &CreateExpenseRequest{
		GroupID: g.ID, Description: "Tickets", Amount: amount("500"),
	}))
	require.NoError(t, err)
	_, err = env.settlements.ListSettlements.CallUnary(ctx, as(asha.ID, &ListSettlementsRequest{GroupID: g.ID}))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), req.Header.Get(testUserHeader), "")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Method(http.MethodGet, "/export/groups/{groupID}.xlsx", NewExportHandler(env.store))

	get := func(userID, groupID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/export/groups/"+groupID+".xlsx", nil)
		req.Header.Set(testUserHeader, userID)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("member downloads the workbook", func(t *testing.T) {
		rec := get(bilal.ID, g.ID)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Goa-Trip.xlsx"`, rec.Header().Get("Content-Disposition"))

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(export.SheetBalances)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "asha", rows[1][0])
		assert.Equal(t, "bilal", rows[2][0])

		rows, err = f.GetRows(export.SheetSettlements)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"bilal", "asha"}, rows[1][:2])
		assert.Equal(t, "PENDING", rows[1][3])
	})

	t.Run("outsider is refused", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(outsider.ID, g.ID).Code)
	})

	t.Run("unknown group", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(asha.ID, "missing").Code)
	})
}
