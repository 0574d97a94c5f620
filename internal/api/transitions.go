package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lumenweave/lumenweave-core/internal/infrastructure/mqtt"
	"github.com/lumenweave/lumenweave-core/internal/show"
	"github.com/lumenweave/lumenweave-core/internal/transition"
)

// transitionQoS is the QoS level for planned-transition publications.
const transitionQoS = 1

// planRequest is the request body for POST /transitions/plan. With
// blend set, the compiled sections' boundary segments are blended in
// the same call and returned alongside the plans.
type planRequest struct {
	Sections []show.Section `json:"sections"`
	Blend    bool           `json:"blend,omitempty"`
}

// planResponse is the response body for POST /transitions/plan.
type planResponse struct {
	Transitions []transition.Transition `json:"transitions"`
	Count       int                     `json:"count"`
	Segments    []show.ChannelSegment   `json:"segments,omitempty"`
}

// blendRequest is the request body for POST /transitions/blend.
type blendRequest struct {
	Transition transition.Transition `json:"transition"`
	Source     show.ChannelSegment   `json:"source"`
	Target     show.ChannelSegment   `json:"target"`
}

// handlePlanTransitions derives blend plans for every boundary in an
// ordered section list.
func (s *Server) handlePlanTransitions(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if len(req.Sections) < 2 {
		writeBadRequest(w, "at least two sections are required")
		return
	}

	start := time.Now()
	transitions := s.planner.Plan(req.Sections)
	elapsed := time.Since(start)

	warnings := 0
	for _, tr := range transitions {
		warnings += len(tr.Warnings)
	}

	s.logger.Info("transitions planned",
		"sections", len(req.Sections),
		"transitions", len(transitions),
		"warnings", warnings,
	)

	s.publishTransitions(transitions)

	if s.tsdb != nil {
		s.tsdb.WriteTransitionMetrics(s.showID, len(transitions), warnings, elapsed)
	}

	resp := planResponse{Transitions: transitions, Count: len(transitions)}
	if req.Blend {
		resp.Segments = s.blender.GenerateSegments(transitions, req.Sections)
	}
	s.hub.Broadcast(WSChannelTransition, resp)

	writeJSON(w, http.StatusOK, resp)
}

// handleBlendTransition blends a source and target segment across one
// planned transition window. Used by renderers that cannot blend locally.
func (s *Server) handleBlendTransition(w http.ResponseWriter, r *http.Request) {
	var req blendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	blended, err := s.blender.Blend(req.Transition, req.Source, req.Target)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"segment": blended})
}

// publishTransitions sends each planned transition to renderers over MQTT.
func (s *Server) publishTransitions(transitions []transition.Transition) {
	if s.mqtt == nil {
		return
	}

	for _, tr := range transitions {
		data, err := json.Marshal(tr)
		if err != nil {
			s.logger.Error("marshal transition failed", "transition_id", tr.ID, "error", err)
			continue
		}

		topic := mqtt.Topics{}.TransitionPlanned(s.showID, tr.ID)
		if err := s.mqtt.Publish(topic, data, transitionQoS, false); err != nil {
			s.logger.Warn("transition publish failed", "topic", topic, "error", err)
		}
	}
}
