package handler

import (
	"net/http"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// resolveBilling loads the billing named by the {billingId} path parameter.
// It writes the error response itself and returns nil on failure.
func (s *Server) resolveBilling(w http.ResponseWriter, r *http.Request) BillingAggregate {
	billingID, err := pathParam(r, "billingId")
	if err != nil {
		s.writeError(w, r, err)
		return nil
	}
	b, err := s.svc.Billings.Resolve(r.Context(), billingID)
	if err != nil {
		s.writeError(w, r, err)
		return nil
	}
	return b
}

// EndBilling handles PUT /billings/{billingId}/end.
// Ending an already closed period returns it unchanged.
func (s *Server) EndBilling(w http.ResponseWriter, r *http.Request) {
	b := s.resolveBilling(w, r)
	if b == nil {
		return
	}
	closed, err := b.End(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBilling(closed))
}

// AddBillingItem handles POST /billings/{billingId}/items.
func (s *Server) AddBillingItem(w http.ResponseWriter, r *http.Request) {
	var req AddBillingItemRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Cost == nil {
		s.writeError(w, r, errMissingField("cost"))
		return
	}
	b := s.resolveBilling(w, r)
	if b == nil {
		return
	}
	item := domain.BillingItem{ItemID: req.ItemID, Cost: *req.Cost}
	if req.Time != nil {
		item.Time = *req.Time
	}
	created, err := b.AddItem(r.Context(), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillingItem(created))
}

// ListBillingItems handles GET /billings/{billingId}/items.
func (s *Server) ListBillingItems(w http.ResponseWriter, r *http.Request) {
	b := s.resolveBilling(w, r)
	if b == nil {
		return
	}
	items, err := b.ListItems(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toBillingItem))
}

// DeleteBillingItem handles DELETE /billings/{billingId}/items/{itemId}.
func (s *Server) DeleteBillingItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathParam(r, "itemId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b := s.resolveBilling(w, r)
	if b == nil {
		return
	}
	n, err := b.DeleteItem(r.Context(), itemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{RowsAffected: n})
}
