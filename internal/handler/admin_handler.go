package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"libraryhub/internal/service"
	"libraryhub/internal/store"
)

// AdminHandler serves the library settings, the connection log, the
// dashboard and seeding.
type AdminHandler struct {
	settings    service.SettingsService
	connections service.ConnectionLogService
	dashboard   service.DashboardService
	seed        service.SeedService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	settings service.SettingsService,
	connections service.ConnectionLogService,
	dashboard service.DashboardService,
	seed service.SeedService,
) *AdminHandler {
	return &AdminHandler{
		settings:    settings,
		connections: connections,
		dashboard:   dashboard,
		seed:        seed,
	}
}

// UpdateSettingsRequest carries the loan policy values to change.
type UpdateSettingsRequest struct {
	MaxBooksPerUser     *int             `json:"max_books_per_user" validate:"omitempty,gt=0"`
	DefaultLoanDuration *int             `json:"default_loan_duration" validate:"omitempty,gt=0"`
	LateFeePerDay       *decimal.Decimal `json:"late_fee_per_day"`
	MaxLateDays         *int             `json:"max_late_days" validate:"omitempty,gt=0"`
}

// GetSettings godoc
// @Summary Library settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.LibrarySettings
// @Router /settings [get]
func (h *AdminHandler) GetSettings(c echo.Context) error {
	settings, err := h.settings.GetSettings(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update library settings
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateSettingsRequest true "Values to change"
// @Success 200 {object} model.LibrarySettings
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /settings [put]
func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	var req UpdateSettingsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	settings, err := h.settings.UpdateSettings(c.Request().Context(), service.SettingsUpdate{
		MaxBooksPerUser:     req.MaxBooksPerUser,
		DefaultLoanDuration: req.DefaultLoanDuration,
		LateFeePerDay:       req.LateFeePerDay,
		MaxLateDays:         req.MaxLateDays,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// ListConnectionLogs godoc
// @Summary Connection log
// @Description Newest entries first.
// @Tags connection-logs
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of entries"
// @Success 200 {array} model.ConnectionLog
// @Failure 403 {object} errors.ErrorResponse
// @Router /connection-logs [get]
func (h *AdminHandler) ListConnectionLogs(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest("invalid limit", "INVALID_LIMIT")
		}
		limit = n
	}
	entries, err := h.connections.ListConnectionLogs(c.Request().Context(), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Dashboard godoc
// @Summary Dashboard counters
// @Description Administrators get the library view, users their own.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Router /dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.dashboard.Stats(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Seed godoc
// @Summary Load a catalog snapshot
// @Description Loads the posted dataset, or the demo catalog when the body is empty. Existing records are skipped.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body store.Dataset false "Dataset to load"
// @Success 200 {object} store.SeedReport
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/seed [post]
func (h *AdminHandler) Seed(c echo.Context) error {
	var data *store.Dataset
	if c.Request().ContentLength != 0 {
		data = &store.Dataset{}
		if err := c.Bind(data); err != nil {
			return badRequest("invalid request body", "INVALID_REQUEST")
		}
	}
	report, err := h.seed.Seed(c.Request().Context(), data)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
