package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"replacementGame/app/echo-server/metrics"
	"replacementGame/business/game"
	"replacementGame/domain"
	"replacementGame/internal/middleware"
	"replacementGame/internal/view"
	"replacementGame/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const sessionCookie = "game_session"

type (
	GameService interface {
		Start(ctx context.Context, userID string) (*domain.GameSession, error)
		Session(ctx context.Context, id string) (*domain.GameSession, error)
		Select(ctx context.Context, id, unavailableID, replacementID string) (*domain.GameSession, error)
		Submit(ctx context.Context, id string) (*domain.GameSession, error)
	}

	GameHandler struct {
		gameService GameService
		validate    *validator.Validate
		timeout     time.Duration
	}

	SelectionRequest struct {
		ItemID        string `json:"item_id" form:"item_id" validate:"required"`
		ReplacementID string `json:"replacement_id" form:"replacement_id" validate:"required"`
	}
)

func NewGameHandler(svc GameService) *GameHandler {
	return &GameHandler{
		gameService: svc,
		validate:    validator.New(),
		timeout:     10 * time.Second,
	}
}

// Page renders the player's current round, starting one if needed.
func (h *GameHandler) Page(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := h.currentSession(ctx, c)
	if err != nil {
		session, err = h.start(ctx, c)
		if err != nil {
			return err
		}
	}

	return render(c, http.StatusOK, view.GamePage(session))
}

func (h *GameHandler) Select(c echo.Context) error {
	var req SelectionRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := h.currentSession(ctx, c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	_, err = h.gameService.Select(ctx, session.ID, req.ItemID, req.ReplacementID)
	switch {
	case err == nil,
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, game.ErrAlreadySubmitted),
		errors.Is(err, game.ErrRoundNotLoaded):
		return c.Redirect(http.StatusSeeOther, "/")
	case errors.Is(err, game.ErrNotUnavailable), errors.Is(err, game.ErrUnknownReplacement):
		return c.String(http.StatusBadRequest, err.Error())
	default:
		logger.Error("Failed to record selection", "trace_id", game.TraceIDFromContext(ctx), "error", err)
		return err
	}
}

func (h *GameHandler) Submit(c echo.Context) error {
	session, err := h.currentSession(c.Request().Context(), c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	_, err = h.submit(c, session.ID)
	if err != nil && !errors.Is(err, game.ErrRoundNotLoaded) && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// NewRound discards the current session and deals a fresh round.
func (h *GameHandler) NewRound(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if _, err := h.start(ctx, c); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// POST /api/v1/games
func (h *GameHandler) CreateGame(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := h.start(ctx, c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(session))
}

// GET /api/v1/games/:id
func (h *GameHandler) GetGame(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := h.ownedSession(ctx, c, c.Param("id"))
	if err != nil {
		return h.apiError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(session))
}

// PUT /api/v1/games/:id/selections
func (h *GameHandler) PutSelection(c echo.Context) error {
	var req SelectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if _, err := h.ownedSession(ctx, c, c.Param("id")); err != nil {
		return h.apiError(c, err)
	}

	session, err := h.gameService.Select(ctx, c.Param("id"), req.ItemID, req.ReplacementID)
	if err != nil {
		return h.apiError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(session))
}

// POST /api/v1/games/:id/submit
func (h *GameHandler) SubmitGame(c echo.Context) error {
	if _, err := h.ownedSession(c.Request().Context(), c, c.Param("id")); err != nil {
		return h.apiError(c, err)
	}

	session, err := h.submit(c, c.Param("id"))
	if err != nil {
		return h.apiError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(session))
}

func (h *GameHandler) start(ctx context.Context, c echo.Context) (*domain.GameSession, error) {
	session, err := h.gameService.Start(ctx, middleware.UserID(c))
	if err != nil {
		return nil, err
	}

	metrics.RoundsStarted.WithLabelValues(strconv.FormatBool(!session.LoadFailed)).Inc()

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return session, nil
}

// submit runs without the handler timeout; the service detaches it from
// request cancellation and the outbound client bounds each call.
func (h *GameHandler) submit(c echo.Context, id string) (*domain.GameSession, error) {
	start := time.Now()
	session, err := h.gameService.Submit(c.Request().Context(), id)
	metrics.SubmitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if session.Result != nil {
		metrics.SubmissionScore.Observe(float64(session.Result.Score))
	}

	return session, nil
}

func (h *GameHandler) currentSession(ctx context.Context, c echo.Context) (*domain.GameSession, error) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return h.ownedSession(ctx, c, cookie.Value)
}

// ownedSession hides sessions that belong to another player.
func (h *GameHandler) ownedSession(ctx context.Context, c echo.Context, id string) (*domain.GameSession, error) {
	session, err := h.gameService.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != middleware.UserID(c) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (h *GameHandler) apiError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	case errors.Is(err, game.ErrNotUnavailable), errors.Is(err, game.ErrUnknownReplacement):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	case errors.Is(err, game.ErrAlreadySubmitted), errors.Is(err, game.ErrRoundNotLoaded):
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	default:
		logger.Error("Game request failed", "trace_id", game.TraceIDFromContext(c.Request().Context()), "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
}
