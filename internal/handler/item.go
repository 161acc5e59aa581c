package handler

import "net/http"

// CreateItem handles POST /teams/{teamId}/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathParam(r, "teamId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req CreateItemRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.svc.Items.Create(r.Context(), teamID, req.ItemType, req.Name, req.IconURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItem(item))
}

// ListItems handles GET /teams/{teamId}/items.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathParam(r, "teamId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.svc.Items.ListByTeam(r.Context(), teamID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toItem))
}
