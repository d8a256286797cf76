package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Eursukkul/table-booking/internal/dto"
	"github.com/Eursukkul/table-booking/internal/ledger"
	"github.com/Eursukkul/table-booking/internal/models"
	"github.com/Eursukkul/table-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type LedgerHandler struct {
	svc service.LedgerService
}

func NewLedgerHandler(svc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

func (h *LedgerHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/ledger", h.GetLedger)

	res := e.Group("/api/v1/reservations")
	res.POST("", h.AddReservation)
	res.GET("/export", h.ExportReservations)
	res.PUT("/import", h.ImportReservations)
	res.DELETE("/edit", h.CancelEdit)
	res.GET("/:index/edit", h.BeginEdit)
	res.PUT("/:index", h.UpdateReservation)
	res.POST("/:index/checkout", h.CheckOut)
	res.DELETE("/:index", h.RemoveReservation)
}

func (h *LedgerHandler) GetLedger(c echo.Context) error {
	st := h.svc.Snapshot(c.Request().Context())
	return c.JSON(http.StatusOK, dto.ToLedgerResponse(st))
}

func (h *LedgerHandler) AddReservation(c echo.Context) error {
	var req dto.ReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	st, r, err := h.svc.Add(c.Request().Context(), req.Input())
	if err != nil {
		return ledgerError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToMutationResponse(st, r))
}

func (h *LedgerHandler) BeginEdit(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}

	_, form, err := h.svc.BeginEdit(c.Request().Context(), index)
	if err != nil {
		return ledgerError(err)
	}
	return c.JSON(http.StatusOK, dto.EditFormResponse{
		Index:      index,
		Name:       form.Name,
		Phone:      form.Phone,
		GuestCount: form.GuestCount,
	})
}

func (h *LedgerHandler) CancelEdit(c echo.Context) error {
	st := h.svc.CancelEdit(c.Request().Context())
	return c.JSON(http.StatusOK, dto.ToLedgerResponse(st))
}

func (h *LedgerHandler) UpdateReservation(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}

	var req dto.ReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	st, r, err := h.svc.Update(c.Request().Context(), index, req.Input())
	if err != nil {
		return ledgerError(err)
	}
	return c.JSON(http.StatusOK, dto.ToMutationResponse(st, r))
}

func (h *LedgerHandler) CheckOut(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}

	st, r, err := h.svc.CheckOut(c.Request().Context(), index)
	if err != nil {
		return ledgerError(err)
	}
	return c.JSON(http.StatusOK, dto.ToMutationResponse(st, r))
}

func (h *LedgerHandler) RemoveReservation(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}

	st, r, err := h.svc.Remove(c.Request().Context(), index)
	if err != nil {
		return ledgerError(err)
	}
	return c.JSON(http.StatusOK, dto.ToMutationResponse(st, r))
}

// ExportReservations returns the sequence in its persisted JSON form.
func (h *LedgerHandler) ExportReservations(c echo.Context) error {
	st := h.svc.Snapshot(c.Request().Context())
	return c.JSON(http.StatusOK, st.Reservations)
}

// ImportReservations replaces the whole sequence with the posted JSON array,
// in the same form ExportReservations returns.
func (h *LedgerHandler) ImportReservations(c echo.Context) error {
	var reservations []models.Reservation
	if err := json.NewDecoder(c.Request().Body).Decode(&reservations); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	st, err := h.svc.Replace(c.Request().Context(), reservations)
	if err != nil {
		return ledgerError(err)
	}
	return c.JSON(http.StatusOK, dto.ToLedgerResponse(st))
}

func indexParam(c echo.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid reservation index")
	}
	return index, nil
}

func ledgerError(err error) error {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{Message: ve.Message, Rule: string(ve.Rule)})
	case errors.Is(err, service.ErrReservationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyCheckedOut):
		return echo.NewHTTPError(http.StatusConflict, "Already checked out.")
	case errors.Is(err, service.ErrNotEditing):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPersist):
		return echo.NewHTTPError(http.StatusInternalServerError, service.ErrPersist.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
	}
}
