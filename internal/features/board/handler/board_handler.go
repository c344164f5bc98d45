package handler

import (
	"net/http"

	"dispatch-board/internal/features/board/service"

	"github.com/gofiber/fiber/v2"
)

// BoardHandler serves the console board view.
type BoardHandler struct {
	service *service.BoardService
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(s *service.BoardService) *BoardHandler {
	return &BoardHandler{
		service: s,
	}
}

// GetBoard handles GET /board.
// @Summary Console board
// @Description The pool lane plus one lane per active route, with drag state.
// @Tags Board
// @Produce json
// @Success 200 {object} service.BoardView
// @Router /board [get]
func (h *BoardHandler) GetBoard(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.service.Board())
}
