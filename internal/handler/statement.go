package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// csvHeaders is the first row of every CSV statement.
var csvHeaders = []string{
	"billing_id", "billing_name", "start_time", "end_time",
	"item_id", "item_name", "cost", "time",
}

// GetStatement handles GET /billings/{billingId}/statement.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetStatement(w http.ResponseWriter, r *http.Request) {
	var format string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid format parameter: %v", domain.ErrValidation, err))
		return
	}
	if format != "" && format != "json" && format != "csv" {
		s.writeError(w, r, fmt.Errorf("%w: format must be json or csv", domain.ErrValidation))
		return
	}

	b := s.resolveBilling(w, r)
	if b == nil {
		return
	}
	st, err := b.Statement(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == "csv" {
		body := buildStatementCSV(st)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
		return
	}
	writeJSON(w, http.StatusOK, toStatement(st))
}

// buildStatementCSV encodes one row per line item. Billing columns repeat on
// every row so each line stands alone.
func buildStatementCSV(st domain.Statement) *bytes.Buffer {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	billingID := st.Billing.ID.String()
	start := st.Billing.StartTime.UTC().Format(time.RFC3339)
	end := formatOptionalTime(st.Billing.EndTime)
	for _, row := range st.Rows {
		//nolint:errcheck
		cw.Write([]string{
			billingID,
			st.Billing.Name,
			start,
			end,
			row.ItemID,
			row.ItemName,
			strconv.FormatInt(row.Cost, 10),
			row.Time.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	return &buf
}

// formatOptionalTime returns the RFC3339 form of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
