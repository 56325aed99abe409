package server

import (
	"encoding/json"
	"net/http"
)

// detailResponse is the error body shape shared by all endpoints.
type detailResponse struct {
	Detail string `json:"detail"`
}

// writeJSON encodes payload as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeDetail writes a {"detail": ...} error body with the given status.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}
