package handler

import (
	"net/http"
)

// CreateTeam handles POST /users/{userId}/teams. The path user becomes the
// team owner.
func (s *Server) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathParam(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req CreateTeamRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	team, err := s.svc.Teams.Create(r.Context(), ownerID, req.TeamName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeam(team))
}

// ListTeams handles GET /users/{userId}/teams.
func (s *Server) ListTeams(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathParam(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	teams, err := s.svc.Teams.ListByOwner(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(teams, toTeam))
}

// resolveTeam loads the team named by the {teamId} path parameter. It writes
// the error response itself and returns nil when resolution fails.
func (s *Server) resolveTeam(w http.ResponseWriter, r *http.Request) TeamAggregate {
	teamID, err := pathParam(r, "teamId")
	if err != nil {
		s.writeError(w, r, err)
		return nil
	}
	team, err := s.svc.Teams.Resolve(r.Context(), teamID)
	if err != nil {
		s.writeError(w, r, err)
		return nil
	}
	return team
}

// RenameTeam handles PUT /teams/{teamId}.
func (s *Server) RenameTeam(w http.ResponseWriter, r *http.Request) {
	var req RenameTeamRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	updated, err := team.Rename(r.Context(), req.TeamName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeam(updated))
}

// DeleteTeam handles DELETE /teams/{teamId}.
// Billings, line items, catalog items and memberships go with it.
func (s *Server) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	if err := team.Delete(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddDriver handles POST /teams/{teamId}/drivers. Adding an existing driver
// returns the existing membership.
func (s *Server) AddDriver(w http.ResponseWriter, r *http.Request) {
	var req AddDriverRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	d, err := team.AddDriver(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDriver(d))
}

// ListDrivers handles GET /teams/{teamId}/drivers.
func (s *Server) ListDrivers(w http.ResponseWriter, r *http.Request) {
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	drivers, err := team.ListDrivers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(drivers, toDriver))
}

// RemoveDriver handles DELETE /teams/{teamId}/drivers/{userId}.
func (s *Server) RemoveDriver(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	n, err := team.RemoveDriver(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{RowsAffected: n})
}

// AddCar handles POST /teams/{teamId}/cars.
func (s *Server) AddCar(w http.ResponseWriter, r *http.Request) {
	var req AddCarRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	c, err := team.AddCar(r.Context(), req.PlateNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCar(c))
}

// ListCars handles GET /teams/{teamId}/cars.
func (s *Server) ListCars(w http.ResponseWriter, r *http.Request) {
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	cars, err := team.ListCars(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cars, toCar))
}

// RemoveCar handles DELETE /teams/{teamId}/cars/{carId}.
func (s *Server) RemoveCar(w http.ResponseWriter, r *http.Request) {
	carID, err := pathParam(r, "carId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	n, err := team.RemoveCar(r.Context(), carID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{RowsAffected: n})
}

// CreateBilling handles POST /teams/{teamId}/billings. The body is optional;
// without a name the period is named after today's date.
func (s *Server) CreateBilling(w http.ResponseWriter, r *http.Request) {
	var req CreateBillingRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	b, err := team.CreateBilling(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBilling(b))
}

// ListBillings handles GET /teams/{teamId}/billings, newest first.
func (s *Server) ListBillings(w http.ResponseWriter, r *http.Request) {
	team := s.resolveTeam(w, r)
	if team == nil {
		return
	}
	billings, err := team.ListBillings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(billings, toBilling))
}
