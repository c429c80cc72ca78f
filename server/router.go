package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type SessionRoutes interface {
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	UpdateFilters(w http.ResponseWriter, r *http.Request)
	RetrySession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	GetSessionChart(w http.ResponseWriter, r *http.Request)
}

type EstablishmentRoutes interface {
	GetEstablishment(w http.ResponseWriter, r *http.Request)
	PostReview(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	sessionHandler       SessionRoutes
	establishmentHandler EstablishmentRoutes
	metricsHandler       http.Handler
	router               *mux.Router
}

// NewRouter creates a router with the app's routes. metricsHandler may be nil.
func NewRouter(
	sessionHandler SessionRoutes,
	establishmentHandler EstablishmentRoutes,
	metricsHandler http.Handler,
	router *mux.Router) *Router {
	return &Router{
		sessionHandler:       sessionHandler,
		establishmentHandler: establishmentHandler,
		metricsHandler:       metricsHandler,
		router:               router,
	}
}

func (r *Router) RegisterRoutes() {
	v1 := r.router.PathPrefix("/v1").Subrouter()

	// body {lat?, long?, radius_meters?, filters?}
	v1.HandleFunc("/sessions", r.sessionHandler.CreateSession).Methods("POST")
	// expects ?since={version(uint)}&wait={duration}, both optional
	v1.HandleFunc("/sessions/{id}", r.sessionHandler.GetSession).Methods("GET")
	v1.HandleFunc("/sessions/{id}", r.sessionHandler.DeleteSession).Methods("DELETE")
	v1.HandleFunc("/sessions/{id}/filters", r.sessionHandler.UpdateFilters).Methods("PATCH")
	v1.HandleFunc("/sessions/{id}/retry", r.sessionHandler.RetrySession).Methods("POST")
	v1.HandleFunc("/sessions/{id}/chart", r.sessionHandler.GetSessionChart).Methods("GET")

	v1.HandleFunc("/establishments/{id}", r.establishmentHandler.GetEstablishment).Methods("GET")
	v1.HandleFunc("/establishments/{id}/reviews", r.establishmentHandler.PostReview).Methods("POST")

	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods("GET")
	}
	r.router.HandleFunc("/ping", Ping).Methods("GET")
}

// Ping handles GET /ping
func Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "pong"})
}
