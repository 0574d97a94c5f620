package api

import (
	"net/http"
	"time"
)

// handleSystemStatus reports connectivity of the optional transports and
// basic process information. Admin-only.
func (s *Server) handleSystemStatus(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"version":    s.version,
		"show_id":    s.showID,
		"uptime_s":   int(time.Since(s.startedAt).Seconds()),
		"ws_clients": s.hub.ClientCount(),
		"rig_size":   s.rig.Size(),
	}

	if s.mqtt != nil {
		status["mqtt_connected"] = s.mqtt.IsConnected()
	}
	if s.tsdb != nil {
		status["tsdb_connected"] = s.tsdb.IsConnected()
	}

	writeJSON(w, http.StatusOK, status)
}
