package http

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/meteo/backend/internal/domain"
	"github.com/meteo/backend/internal/service"
	"github.com/meteo/backend/internal/view"
)

// Handler contains all HTTP handlers
type Handler struct {
	lookups     *service.LookupService
	sessions    *SessionStore
	logger      *slog.Logger
	waitTimeout time.Duration
}

// NewHandler creates a new handler. waitTimeout bounds ?wait=true requests.
func NewHandler(lookups *service.LookupService, sessions *SessionStore, waitTimeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		lookups:     lookups,
		sessions:    sessions,
		logger:      logger.With("component", "http"),
		waitTimeout: waitTimeout,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	db := "ok"
	if err := h.lookups.Health(c.Context()); err != nil {
		h.logger.Warn("lookup store unhealthy", "error", err)
		db = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "meteo-backend",
		"version":  "1.0.0",
		"database": db,
	})
}

// GetWeather performs a one-off lookup by ?city= or ?lat=&lon=
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	q, err := queryFromRequest(c)
	if err != nil {
		return err
	}

	snap, err := h.lookups.Current(c.Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(domain.WeatherResponse{
		Data:    snap,
		Success: true,
	})
}

// GetLookups returns the lookup log within a time range
func (h *Handler) GetLookups(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours < 1 || hours > 720 { // max 30 days
		hours = 24
	}

	data, err := h.lookups.RecentLookups(c.Context(), hours)
	if err != nil {
		h.logger.Error("failed to fetch lookups", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch lookup history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

type searchRequest struct {
	City string `json:"city" form:"city"`
}

type locationRequest struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Error string   `json:"error"`
}

// GetSearch returns the session's search page state
func (h *Handler) GetSearch(c *fiber.Ctx) error {
	s := h.session(c)
	return h.respondState(c, s.view.State())
}

// PostSearch starts a city search
func (h *Handler) PostSearch(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	s := h.session(c)
	st := s.view.Search(req.City)
	return h.settle(c, s, st)
}

// PostLocation starts a coordinate search or reports a geolocation failure
func (h *Handler) PostLocation(c *fiber.Ctx) error {
	var req locationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	s := h.session(c)
	if req.Error != "" {
		return h.respondState(c, s.view.LocationFailed(domain.ParseGeolocationFailure(req.Error)))
	}
	if req.Lat == nil || req.Lon == nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon are required")
	}
	st := s.view.SearchCoords(*req.Lat, *req.Lon)
	return h.settle(c, s, st)
}

// DeleteSearch resets the search page
func (h *Handler) DeleteSearch(c *fiber.Ctx) error {
	s := h.session(c)
	return h.respondState(c, s.view.Clear())
}

// PostDetails navigates to the details page with the current snapshot
func (h *Handler) PostDetails(c *fiber.Ctx) error {
	s := h.session(c)
	nav := s.view.ViewDetails()
	if nav == nil {
		return fiber.NewError(fiber.StatusConflict, "No weather data to show")
	}
	s.setPending(nav)
	return c.Redirect(apiPrefix+string(view.RouteDetails), fiber.StatusSeeOther)
}

// GetDetails renders the pending navigation, or sends the client back to
// the search page when there is none
func (h *Handler) GetDetails(c *fiber.Ctx) error {
	s := h.session(c)
	dv, ok := view.NewDetailsView(s.takePending())
	if !ok {
		return c.Redirect(apiPrefix+searchPath, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    dv.Render(),
	})
}

// settle optionally waits for the fetch started by a search
func (h *Handler) settle(c *fiber.Ctx, s *session, st view.ViewState) error {
	if st.State == view.StateLoading && c.QueryBool("wait") {
		ctx, cancel := context.WithTimeout(c.Context(), h.waitTimeout)
		defer cancel()
		settled, err := s.view.Wait(ctx)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		st = settled
	}
	return h.respondState(c, st)
}

func (h *Handler) respondState(c *fiber.Ctx, st view.ViewState) error {
	status := fiber.StatusOK
	switch {
	case st.State == view.StateLoading:
		status = fiber.StatusAccepted
	case st.Error != nil && st.Error.Kind == domain.KindValidation.String():
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(st)
}

// session returns the caller's session, creating one and setting the cookie
// when the request carries none or an expired one
func (h *Handler) session(c *fiber.Ctx) *session {
	if id := c.Cookies(SessionCookie); id != "" {
		if s, ok := h.sessions.Get(id); ok {
			return s
		}
	}

	id, s := h.sessions.Create()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return s
}

func queryFromRequest(c *fiber.Ctx) (domain.Query, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		// the query outlives the request in the lookup log
		return domain.NewCityQuery(utils.CopyString(c.Query("city")))
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Query{}, domain.NewValidationError("Invalid latitude.")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Query{}, domain.NewValidationError("Invalid longitude.")
	}
	return domain.NewCoordsQuery(lat, lon)
}
