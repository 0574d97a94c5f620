package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lumenweave/lumenweave-core/internal/compiler"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/mqtt"
	"github.com/lumenweave/lumenweave-core/internal/show"
	"github.com/lumenweave/lumenweave-core/internal/template"
)

// compileQoS is the QoS level for compiled-section publications.
const compileQoS = 1

// compileRequest is the request body for POST /compile.
type compileRequest struct {
	SectionID    string    `json:"section_id"`
	TemplateSlug string    `json:"template_slug"`
	Plan         show.Plan `json:"plan"`
}

// compileResponse wraps the compiler output with the request identity.
type compileResponse struct {
	SectionID    string           `json:"section_id"`
	TemplateSlug string           `json:"template_slug"`
	Result       *compiler.Result `json:"result"`
}

// handleCompile renders a template against a plan window and fans the
// compiled segments out to renderers.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.SectionID == "" || req.TemplateSlug == "" {
		writeBadRequest(w, "section_id and template_slug are required")
		return
	}

	tpl, err := s.templates.GetBySlug(r.Context(), req.TemplateSlug)
	if err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			writeNotFound(w, "template not found")
			return
		}
		s.logger.Error("template lookup for compile failed", "error", err)
		writeInternalError(w, "compile failed")
		return
	}

	start := time.Now()
	result, err := s.compiler.Compile(req.Plan, tpl)
	if err != nil {
		s.logger.Error("compile failed",
			"section_id", req.SectionID,
			"template", req.TemplateSlug,
			"error", err,
		)
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}
	elapsed := time.Since(start)

	s.logger.Info("section compiled",
		"section_id", req.SectionID,
		"template", req.TemplateSlug,
		"segments", len(result.Segments),
		"skipped", len(result.Skipped),
		"degraded", result.Degraded,
		"duration_ms", elapsed.Milliseconds(),
	)

	resp := compileResponse{
		SectionID:    req.SectionID,
		TemplateSlug: req.TemplateSlug,
		Result:       result,
	}

	s.publishCompiled(req.SectionID, resp, result.Degraded)

	if s.tsdb != nil {
		s.tsdb.WriteCompileMetrics(s.showID, req.SectionID, elapsed,
			len(result.Segments), len(result.Skipped), result.Degraded)
	}

	s.hub.Broadcast(WSChannelCompile, resp)

	writeJSON(w, http.StatusOK, resp)
}

// publishCompiled sends the compiled section to renderers over MQTT.
// Degraded compiles additionally raise an operator alert on the shared
// degraded topic.
func (s *Server) publishCompiled(sectionID string, resp compileResponse, degraded bool) {
	if s.mqtt == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal compiled section failed", "error", err)
		return
	}

	topic := mqtt.Topics{}.SectionCompiled(s.showID, sectionID)
	if err := s.mqtt.Publish(topic, data, compileQoS, false); err != nil {
		s.logger.Warn("compiled section publish failed", "topic", topic, "error", err)
	}

	if degraded {
		alert, err := json.Marshal(map[string]any{
			"show_id":    s.showID,
			"section_id": sectionID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return
		}
		if err := s.mqtt.Publish(mqtt.Topics{}.CompileDegraded(), alert, compileQoS, false); err != nil {
			s.logger.Warn("degraded alert publish failed", "error", err)
		}
	}
}
