package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumenweave/lumenweave-core/internal/infrastructure/mqtt"
	"github.com/lumenweave/lumenweave-core/internal/template"
)

// templateQoS is the QoS level for catalogue change notifications.
const templateQoS = 1

// handleListTemplates returns the full template catalogue.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.templates.List(r.Context())
	if err != nil {
		s.logger.Error("list templates failed", "error", err)
		writeInternalError(w, "failed to list templates")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"templates": templates,
		"count":     len(templates),
	})
}

// handleCreateTemplate adds a template to the catalogue.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl template.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if tpl.ID == "" {
		tpl.ID = "tpl-" + uuid.NewString()[:8]
	}

	if err := tpl.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := s.templates.Create(r.Context(), &tpl); err != nil {
		if errors.Is(err, template.ErrTemplateExists) {
			writeConflict(w, "template slug already exists")
			return
		}
		s.logger.Error("create template failed", "error", err)
		writeInternalError(w, "failed to create template")
		return
	}

	s.notifyTemplateChanged(mqtt.Topics{}.TemplateUpdated(tpl.Slug), &tpl, "created")
	writeJSON(w, http.StatusCreated, tpl)
}

// handleGetTemplate returns a single template by slug.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tpl, err := s.templates.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			writeNotFound(w, "template not found")
			return
		}
		s.logger.Error("get template failed", "error", err)
		writeInternalError(w, "failed to get template")
		return
	}

	writeJSON(w, http.StatusOK, tpl)
}

// handleUpdateTemplate replaces a template's definition. The slug in the
// URL names the target; the body carries the new definition.
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	existing, err := s.templates.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			writeNotFound(w, "template not found")
			return
		}
		s.logger.Error("get template for update failed", "error", err)
		writeInternalError(w, "failed to update template")
		return
	}

	var tpl template.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	// Identity is fixed by the URL; the body cannot retarget it.
	tpl.ID = existing.ID
	tpl.Slug = existing.Slug
	tpl.CreatedAt = existing.CreatedAt

	if err := tpl.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := s.templates.Update(r.Context(), &tpl); err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			writeNotFound(w, "template not found")
			return
		}
		s.logger.Error("update template failed", "error", err)
		writeInternalError(w, "failed to update template")
		return
	}

	s.notifyTemplateChanged(mqtt.Topics{}.TemplateUpdated(tpl.Slug), &tpl, "updated")
	writeJSON(w, http.StatusOK, tpl)
}

// handleDeleteTemplate removes a template from the catalogue.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tpl, err := s.templates.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			writeNotFound(w, "template not found")
			return
		}
		s.logger.Error("get template for delete failed", "error", err)
		writeInternalError(w, "failed to delete template")
		return
	}

	if err := s.templates.Delete(r.Context(), tpl.ID); err != nil {
		s.logger.Error("delete template failed", "error", err)
		writeInternalError(w, "failed to delete template")
		return
	}

	s.notifyTemplateChanged(mqtt.Topics{}.TemplateDeleted(slug), map[string]string{"slug": slug}, "deleted")
	w.WriteHeader(http.StatusNoContent)
}

// notifyTemplateChanged fans a catalogue change out to MQTT and WebSocket
// subscribers. Both transports are best-effort.
func (s *Server) notifyTemplateChanged(topic string, payload any, action string) {
	if s.mqtt != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			if err := s.mqtt.Publish(topic, data, templateQoS, false); err != nil {
				s.logger.Warn("template change publish failed", "topic", topic, "error", err)
			}
		}
	}

	s.hub.Broadcast(WSChannelTemplate, map[string]any{
		"action":   action,
		"template": payload,
	})
}
