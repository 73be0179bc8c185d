package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/amrita-prog/Paynion-Project/internal/export"
	"github.com/amrita-prog/Paynion-Project/internal/middleware"
	"github.com/amrita-prog/Paynion-Project/internal/settlement"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportHandler serves a group's report as an XLSX download. It expects a chi route
// with a {groupID} parameter behind middleware.RequireAuthHTTP.
type ExportHandler struct {
	store storage.Store
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(store storage.Store) *ExportHandler {
	return &ExportHandler{store: store}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	groupID := chi.URLParam(r, "groupID")
	slog.Info("Export request received", "group_id", groupID, "user_id", userID)

	group, err := memberGroup(ctx, h.store, groupID, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "group not found", http.StatusNotFound)
		return
	case errors.Is(err, errNotMember):
		http.Error(w, errNotMember.Error(), http.StatusForbidden)
		return
	case err != nil:
		slog.Error("Export failed", "group_id", groupID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	report, err := h.report(r, group.ID)
	if err != nil {
		slog.Error("Export failed", "group_id", groupID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data, err := export.Workbook(report)
	if err != nil {
		slog.Error("Export failed", "group_id", groupID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	filename := strings.Trim(unsafeFilename.ReplaceAllString(group.Title, "-"), "-")
	if filename == "" {
		filename = "group"
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Warn("Export write failed", "group_id", groupID, "error", err)
	}
}

func (h *ExportHandler) report(r *http.Request, groupID string) (*export.GroupReport, error) {
	ctx := r.Context()
	report := &export.GroupReport{Names: make(map[string]string)}

	// Balances, settlements and history are read in one transaction.
	err := h.store.InTx(ctx, func(q storage.Queries) error {
		group, err := q.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		report.Group = group

		if report.Balances, err = settlement.GroupBalances(ctx, q, group); err != nil {
			return err
		}
		if report.Settlements, err = q.ListSettlementsByGroup(ctx, groupID); err != nil {
			return err
		}
		if report.History, err = q.ListPaymentHistoryByGroup(ctx, groupID); err != nil {
			return err
		}

		users, err := q.GetUsersByIDs(ctx, group.Members)
		if err != nil {
			return err
		}
		for id, u := range users {
			report.Names[id] = u.DisplayName
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
