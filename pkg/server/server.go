// Package server exposes the display-shell boundary over HTTP: depth
// snapshots, simulation submission and recall, book stats, and a
// websocket stream of fresh snapshots.
package server

import (
	"context"

	"booksim/pkg/book"
	"booksim/pkg/sim"
	"booksim/pkg/stats"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	app     *fiber.App
	books   *book.Store
	desk    *sim.Desk
	tracker *stats.Tracker
	hub     *Hub
	log     *zap.Logger
}

func New(books *book.Store, desk *sim.Desk, tracker *stats.Tracker, hub *Hub, log *zap.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			ServerHeader:          "booksim",
			AppName:               "booksim",
			DisableStartupMessage: true,
		}),
		books:   books,
		desk:    desk,
		tracker: tracker,
		hub:     hub,
		log:     log.With(zap.String("component", "server")),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api/v1")
	api.Get("/book/:venue/:symbol", s.handleBook)
	api.Post("/simulations", s.handleSimulate)
	api.Get("/simulations", s.handleListSimulations)
	api.Get("/simulations/:venue/:symbol/latest", s.handleLatestSimulation)
	api.Get("/stats/:venue/:symbol", s.handleStats)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/book/:venue/:symbol", websocket.New(s.handleBookStream))
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
