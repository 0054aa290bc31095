package controllers

import (
	"encoding/json"
	"net/http"
)

// Health godoc
// @Summary Liveness and readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string "status: OK"
// @Router /healthz [get]
// @Router /ready [get]
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}
