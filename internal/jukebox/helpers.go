package jukebox

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// publishEvent pushes a JSON event onto the broadcast channel for
// external consumers. Clients still poll; this is an integration
// hook, not a delivery guarantee.
func (s *Server) publishEvent(ctx context.Context, event map[string]any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("jukebox-service: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		log.Printf("jukebox-service: publish event: %v", err)
	}
}
