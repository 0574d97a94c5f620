package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenweave/lumenweave-core/internal/rig"
)

// handleGetRig returns the rig topology: fixtures in physical order and
// the group names templates may target.
func (s *Server) handleGetRig(w http.ResponseWriter, _ *http.Request) {
	ids := s.rig.Fixtures()

	fixtures := make([]rig.Fixture, 0, len(ids))
	for _, id := range ids {
		f, err := s.rig.Fixture(id)
		if err != nil {
			continue
		}
		fixtures = append(fixtures, f)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fixtures": fixtures,
		"groups":   s.rig.GroupNames(),
		"count":    len(fixtures),
	})
}

// handleGetFixture returns a single fixture's calibration.
func (s *Server) handleGetFixture(w http.ResponseWriter, r *http.Request) {
	id := rig.FixtureID(chi.URLParam(r, "id"))

	fixture, err := s.rig.Fixture(id)
	if err != nil {
		if errors.Is(err, rig.ErrUnknownFixture) {
			writeNotFound(w, "fixture not found")
			return
		}
		s.logger.Error("get fixture failed", "error", err)
		writeInternalError(w, "failed to get fixture")
		return
	}

	writeJSON(w, http.StatusOK, fixture)
}

// handleGetGroup returns the members of a rig group.
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	members, err := s.rig.Group(name)
	if err != nil {
		if errors.Is(err, rig.ErrUnknownGroup) {
			writeNotFound(w, "group not found")
			return
		}
		s.logger.Error("get group failed", "error", err)
		writeInternalError(w, "failed to get group")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":    name,
		"members": members,
		"count":   len(members),
	})
}
