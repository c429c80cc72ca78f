package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println("Error encoding response:", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, APIResponse{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, APIResponse{Status: "error", Message: message})
}

func parseArgFloat64(vals url.Values, name string) (float64, error) {
	s := vals.Get(name)
	return strconv.ParseFloat(s, 64)
}

// optionalFloat64 returns def when the argument is absent.
func optionalFloat64(vals url.Values, name string, def float64) (float64, error) {
	if vals.Get(name) == "" {
		return def, nil
	}
	return parseArgFloat64(vals, name)
}
