package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

var tokenAuth *jwtauth.JWTAuth

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// Bearer-token routes consumed by the app clients
		r.Group(func(r chi.Router) {
			r.Use(h.BearerAuth)

			r.Post("/game", h.CreateGame)
			r.Post("/game/{sessionID}/accept", h.AcceptGame)
			r.Post("/game/{sessionID}/decline", h.DeclineGame)
			r.Get("/game/{sessionID}", h.ResultGame)
			r.Get("/games", h.GetUserGames)
			r.Get("/games/active", h.GetActiveSession)
			r.Get("/games/history", h.GetGameHistory)
			r.Get("/games/stats", h.GetStats)
		})

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)

		})
	})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "api service is running at port " + os.Getenv("API_SERVICE_PORT"),
	})
}

func InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := tokenAuth.Encode(map[string]interface{}{
		"service_id": 5610002,
		"exp":        expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
