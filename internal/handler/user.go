package handler

import (
	"net/http"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/middleware"
)

// CreateUser handles POST /users.
// The new user receives the default DRIVER role in the same transaction.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.svc.Users.Create(r.Context(), domain.User{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateUserResponse{ID: id})
}

// GetUser handles GET /users/{userId}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.svc.Users.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(v))
}

// ListUsers handles GET /users. Only callers holding the ADMIN role may
// list every user.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerID(r.Context())
	users, err := s.svc.Users.ListAll(r.Context(), caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(users, toUser))
}

// AssignRole handles POST /users/{userId}/roles. Granting ADMIN requires an
// ADMIN caller.
func (s *Server) AssignRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerID(r.Context())
	userID, err := pathParam(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req AssignRoleRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	role, err := s.svc.Roles.Grant(r.Context(), caller, userID, req.RoleType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRole(role))
}

// ListRoles handles GET /users/{userId}/roles.
func (s *Server) ListRoles(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	roles, err := s.svc.Roles.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(roles, toRole))
}
