package rest

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/veritabl/scorer/internal/domain"
	"github.com/veritabl/scorer/internal/present/rest/presenter"
	"github.com/veritabl/scorer/internal/usecase"
)

type Handler struct {
	passport  *usecase.PassportUsecase
	stamp     *usecase.StampUsecase
	score     *usecase.ScoreUsecase
	community *usecase.CommunityUsecase
}

func NewHandler(
	passport *usecase.PassportUsecase,
	stamp *usecase.StampUsecase,
	score *usecase.ScoreUsecase,
	community *usecase.CommunityUsecase,
) *Handler {
	return &Handler{
		passport:  passport,
		stamp:     stamp,
		score:     score,
		community: community,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.POST("/registry/communities", h.handleCommunityCreate)
	e.DELETE("/registry/communities/:community", h.handleCommunityDelete)
	e.POST("/registry/:community/passport", h.handlePassportSubmit)
	e.GET("/registry/:community/passport/:address", h.handlePassportGet)
	e.DELETE("/registry/passports/:id", h.handlePassportDelete)
	e.POST("/registry/:community/stamps", h.handleStampSubmit)
	e.GET("/registry/:community/stamps/:address", h.handleStampList)
	e.DELETE("/registry/:community/stamps/:address/:hash", h.handleStampRemove)
	e.GET("/registry/:community/score/:address", h.handleScoreGet)
	e.POST("/registry/:community/score/:address/recalculate", h.handleRecalculate)
	e.DELETE("/registry/scores/:passport", h.handleScoreDelete)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleCommunityCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequest(c, err)
	}
	if body.Name == "" {
		return presenter.BadRequestMessage(c, "community name is required")
	}

	community, err := h.community.Create(ctx, body.Name)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.Created(c, community)
}

func (h *Handler) handleCommunityDelete(c echo.Context) error {
	ctx := c.Request().Context()

	communityID, err := communityParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid community id")
	}

	if err := h.community.Delete(ctx, communityID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "community not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handlePassportSubmit(c echo.Context) error {
	ctx := c.Request().Context()

	communityID, err := communityParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid community id")
	}

	var body struct {
		Address string `json:"address"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequest(c, err)
	}

	passport, err := h.passport.Submit(ctx, body.Address, communityID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "community not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, passport)
}

func (h *Handler) handlePassportGet(c echo.Context) error {
	ctx := c.Request().Context()

	communityID, err := communityParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid community id")
	}

	passport, err := h.passport.Get(ctx, c.Param("address"), communityID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "passport not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, passport)
}

func (h *Handler) handlePassportDelete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid passport id")
	}

	if err := h.passport.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProtectedReference) {
			return presenter.Conflict(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "passport not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleStampSubmit(c echo.Context) error {
	ctx := c.Request().Context()

	communityID, err := communityParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid community id")
	}

	var body struct {
		Address string               `json:"address"`
		Stamps  []usecase.StampInput `json:"stamps"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequest(c, err)
	}
	if len(body.Stamps) == 0 {
		return presenter.BadRequestMessage(c, "at least one stamp is required")
	}
	for _, stamp := range body.Stamps {
		if stamp.Hash == "" {
			return presenter.BadRequestMessage(c, "stamp hash is required")
		}
	}

	stamps, err := h.stamp.Submit(ctx, body.Address, communityID, body.Stamps)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, err.Error())
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, stamps)
}

func (h *Handler) handleStampList(c echo.Context) error {
	ctx := c.Request().Context()

	communityID, err := communityParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid community id")
	}

	stamps, err := h.stamp.List(ctx, c.Param("address"), communityID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "passport not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, stamps)
}

func (h *Handler) handleStampRemove(c echo.Context) error {
	ctx := c.Request().Context()

	communityID, err := communityParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid community id")
	}

	err = h.stamp.Remove(ctx, c.Param("address"), communityID, c.Param("hash"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "passport not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleScoreGet(c echo.Context) error {
	ctx := c.Request().Context()

	communityID, err := communityParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid community id")
	}

	score, err := h.score.Get(ctx, c.Param("address"), communityID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, err.Error())
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, score)
}

func (h *Handler) handleRecalculate(c echo.Context) error {
	ctx := c.Request().Context()

	communityID, err := communityParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid community id")
	}

	err = h.score.RequestRecalculation(ctx, c.Param("address"), communityID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "passport not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "scheduled"})
}

func (h *Handler) handleScoreDelete(c echo.Context) error {
	ctx := c.Request().Context()

	passportID, err := strconv.ParseUint(c.Param("passport"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid passport id")
	}

	if err := h.score.DeleteScore(ctx, passportID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "score not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.NoContent(c)
}

func communityParam(c echo.Context) (uint32, error) {
	id, err := strconv.ParseUint(c.Param("community"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}
