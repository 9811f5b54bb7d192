package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

func (s *Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	if skill := q.Get("skill"); skill != "" {
		id, err := strconv.Atoi(skill)
		if err != nil {
			http.Error(w, "invalid skill", http.StatusBadRequest)
			return
		}
		items, err := s.api.QueryBySkill(ctx, id)
		if err != nil {
			http.Error(w, "query error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeItems(w, items)
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	items, err := s.api.QueryRecent(ctx, limit, offset)
	if err != nil {
		http.Error(w, "query error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeItems(w, items)
}

// handleIngest runs one cycle outside the regular schedule.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	n, err := s.api.IngestOnce(r.Context())
	if err != nil {
		http.Error(w, "ingest error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"processed": n})
}

func writeItems(w http.ResponseWriter, items any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}
