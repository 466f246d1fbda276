package web

import (
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	attendanceHandler := handlers.NewAttendanceHandler(deps.Store)
	identitiesHandler := handlers.NewIdentitiesHandler(deps.Registry, deps.Index, deps.Store)
	recognizeHandler := handlers.NewRecognizeHandler(deps.Pipeline)
	sessionsHandler := handlers.NewSessionsHandler(deps.Pipeline, s.sessionManager, deps.NewDetector)

	s.router.Get("/health", handlers.HealthCheck)

	// Attendance ledger
	s.router.Get("/attendance", attendanceHandler.List)
	s.router.Post("/attendance", attendanceHandler.Create)
	s.router.Get("/attendance/export", attendanceHandler.Export)

	// Identity registry
	s.router.Get("/identities", identitiesHandler.List)
	s.router.Post("/identities", identitiesHandler.Register)
	s.router.Post("/identities/similar", identitiesHandler.Similar)

	// One-shot recognition
	s.router.Post("/recognize", recognizeHandler.Recognize)

	// Continuous recognition sessions
	s.router.Get("/sessions", sessionsHandler.List)
	s.router.Post("/sessions", sessionsHandler.Start)
	s.router.Get("/sessions/{id}", sessionsHandler.Get)
	s.router.Delete("/sessions/{id}", sessionsHandler.Stop)
}
