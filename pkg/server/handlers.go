package server

import (
	"errors"

	"booksim/pkg/models"
	"booksim/pkg/sim"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Server) handleBook(c *fiber.Ctx) error {
	venue, err := models.ParseVenue(c.Params("venue"))
	if err != nil {
		return badRequest(c, err)
	}

	snap, ok := s.books.SnapshotDepth(venue, c.Params("symbol"), c.QueryInt("depth"))
	if !ok {
		return notFound(c, models.ErrBookNotReady)
	}
	return c.JSON(snap)
}

type simulateReq struct {
	Venue        string          `json:"venue"`
	Symbol       string          `json:"symbol"`
	Side         string          `json:"side"`
	Kind         string          `json:"kind"`
	Price        decimal.Decimal `json:"price"`
	Qty          decimal.Decimal `json:"qty"`
	DelaySeconds int             `json:"delay_seconds"`
}

func (s *Server) handleSimulate(c *fiber.Ctx) error {
	var req simulateReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	venue, err := models.ParseVenue(req.Venue)
	if err != nil {
		return badRequest(c, err)
	}
	side, err := models.ParseOrderSide(req.Side)
	if err != nil {
		return badRequest(c, err)
	}
	kind, err := models.ParseOrderKind(req.Kind)
	if err != nil {
		return badRequest(c, err)
	}

	entry, err := s.desk.Submit(sim.OrderSpec{
		Venue:        venue,
		Symbol:       req.Symbol,
		Side:         side,
		Kind:         kind,
		Price:        req.Price,
		Qty:          req.Qty,
		DelaySeconds: req.DelaySeconds,
	})
	switch {
	case errors.Is(err, models.ErrBadOrder):
		return badRequest(c, err)
	case errors.Is(err, models.ErrBookNotReady), errors.Is(err, models.ErrNoMarketPrice):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		s.log.Error("simulation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (s *Server) handleListSimulations(c *fiber.Ctx) error {
	return c.JSON(s.desk.All())
}

func (s *Server) handleLatestSimulation(c *fiber.Ctx) error {
	venue, err := models.ParseVenue(c.Params("venue"))
	if err != nil {
		return badRequest(c, err)
	}

	entry, ok := s.desk.Latest(venue, c.Params("symbol"))
	if !ok {
		return notFound(c, errors.New("no simulations recorded"))
	}
	return c.JSON(entry)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	venue, err := models.ParseVenue(c.Params("venue"))
	if err != nil {
		return badRequest(c, err)
	}

	summary, ok := s.tracker.Summary(venue, c.Params("symbol"))
	if !ok {
		return notFound(c, errors.New("no stats recorded"))
	}
	return c.JSON(summary)
}

// handleBookStream pushes every fresh snapshot for one book to the
// client until it disconnects.
func (s *Server) handleBookStream(c *websocket.Conn) {
	defer c.Close()

	venue, err := models.ParseVenue(c.Params("venue"))
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": err.Error()})
		return
	}
	symbol := c.Params("symbol")

	sub := s.hub.Subscribe(16)
	defer s.hub.Unsubscribe(sub)

	// Prime the stream with the current state when the book is ready.
	if snap, ok := s.books.Snapshot(venue, symbol); ok {
		if err := c.WriteJSON(snap); err != nil {
			return
		}
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			if snap.Venue != venue || snap.Symbol != symbol {
				continue
			}
			if err := c.WriteJSON(snap); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func notFound(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
}
