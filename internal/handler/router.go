package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/ludoteca/pkg/logger"
	"github.com/segyhp/ludoteca/pkg/response"
)

// NewRouter wires every HTTP route.
func NewRouter(library *LibraryHandler, health *HealthHandler, log logger.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(log), response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/games", library.RegisterGame).Methods(http.MethodPost)
	api.HandleFunc("/games", library.ListGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", library.GetGame).Methods(http.MethodGet)

	api.HandleFunc("/members", library.RegisterMember).Methods(http.MethodPost)
	api.HandleFunc("/members", library.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}", library.GetMember).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}/active", library.SetMemberActive).Methods(http.MethodPut)
	api.HandleFunc("/members/{id}/fine-payments", library.PayFine).Methods(http.MethodPost)

	api.HandleFunc("/loans", library.IssueLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", library.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", library.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/fine", library.PreviewFine).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/return", library.ReturnLoan).Methods(http.MethodPost)

	api.HandleFunc("/report", library.Report).Methods(http.MethodGet)
	api.HandleFunc("/snapshot", library.Snapshot).Methods(http.MethodPost)

	return router
}
