package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/aerostay/bookflow/internal/booking"
	"github.com/aerostay/bookflow/internal/domain"
	redisrepo "github.com/aerostay/bookflow/internal/repository/redis"
	"github.com/aerostay/bookflow/internal/service"
	"github.com/aerostay/bookflow/internal/service/catalog"
	"github.com/aerostay/bookflow/internal/service/locations"
	"github.com/aerostay/bookflow/internal/service/session"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/locations", handleListLocations(svcs))

	r.POST("/sessions", handleCreateSession(svcs, idem))
	r.GET("/sessions/:id", handleGetSession(svcs))
	r.PUT("/sessions/:id/location", handleSetLocation(svcs))
	r.PUT("/sessions/:id/schedule", handleSetSchedule(svcs))
	r.GET("/sessions/:id/rooms", handleFetchRooms(svcs))
	r.POST("/sessions/:id/rooms", handleAddRoom(svcs))
	r.DELETE("/sessions/:id/rooms/:roomTypeId", handleRemoveRoom(svcs))
	r.POST("/sessions/:id/advance", handleAdvance(svcs))
	r.POST("/sessions/:id/back", handleBack(svcs))
	r.GET("/sessions/:id/summary", handleSummary(svcs))

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List hotel outlets
// @Success  200  {array}  LocationResponse
// @Router   /locations [get]
func handleListLocations(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		locs, err := svcs.Locations.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}

		out := make([]LocationResponse, 0, len(locs))
		for i := range locs {
			out = append(out, *toLocationResponse(&locs[i]))
		}
		// directory changes rarely
		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=300", true)
	}
}

// @Summary  Open a booking session (idempotent)
// @Success  201 {object} SessionResponse
// @Header   201 {string} Idempotency-Key "echo"
// @Failure  409 {object} ErrorResponse "idem in progress"
// @Router   /sessions [post]
func handleCreateSession(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemSession(idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		sess, err := svcs.Sessions.Create(c.Request.Context())
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := toSessionResponse(sess, domain.PaymentInfo{})

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get session state with derived totals
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Failure  404 {object} ErrorResponse
// @Router   /sessions/{id} [get]
func handleGetSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		sess, info, err := svcs.Sessions.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(sess, info))
	}
}

// @Summary  Select the hotel outlet
// @Param    id   path  string              true  "Session ID (uuid)"
// @Param    req  body  SetLocationRequest  true  "payload"
// @Success  200 {object} SessionResponse
// @Failure  404 {object} ErrorResponse
// @Router   /sessions/{id}/location [put]
func handleSetLocation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		var req SetLocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sess, err := svcs.Sessions.SetLocation(c.Request.Context(), id, req.LocationID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(sess, domain.PaymentInfo{}))
	}
}

// @Summary  Set check-in time, duration and promo code
// @Param    id   path  string              true  "Session ID (uuid)"
// @Param    req  body  SetScheduleRequest  true  "payload"
// @Success  200 {object} SessionResponse
// @Failure  400 {object} ErrorResponse
// @Router   /sessions/{id}/schedule [put]
func handleSetSchedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		var req SetScheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		checkIn := time.Unix(req.CheckInDatetime, 0).UTC()
		sess, err := svcs.Sessions.SetSchedule(
			c.Request.Context(),
			id,
			checkIn,
			req.DurationHours,
			req.Promotion,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(sess, domain.PaymentInfo{}))
	}
}

// @Summary  Fetch available room types for the current inputs
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} RoomListResponse
// @Failure  409 {object} ErrorResponse "inputs incomplete / fetch superseded"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Failure  502 {object} ErrorResponse "availability API failure"
// @Router   /sessions/{id}/rooms [get]
func handleFetchRooms(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		rlKey := "ip:" + c.ClientIP()
		sess, err := svcs.Sessions.FetchRooms(c.Request.Context(), id, rlKey)
		if err != nil {
			if errors.Is(err, session.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
				return
			}
			respondErr(c, err)
			return
		}
		// short-lived: inventory counts go stale fast
		writeJSONWithCache(c, http.StatusOK, toRoomListResponse(sess), "private, max-age=15", true)
	}
}

// @Summary  Add a room type to the selection
// @Param    id   path  string          true  "Session ID (uuid)"
// @Param    req  body  AddRoomRequest  true  "payload"
// @Success  200 {object} SessionResponse
// @Failure  409 {object} ErrorResponse "no availability / catalog stale"
// @Router   /sessions/{id}/rooms [post]
func handleAddRoom(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		var req AddRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
		}
		sess, info, err := svcs.Sessions.AddRoom(c.Request.Context(), id, req.RoomTypeID, req.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(sess, info))
	}
}

// @Summary  Remove one of a room type from the selection
// @Param    id          path  string  true  "Session ID (uuid)"
// @Param    roomTypeId  path  string  true  "Room type ID"
// @Success  200 {object} SessionResponse
// @Router   /sessions/{id}/rooms/{roomTypeId} [delete]
func handleRemoveRoom(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		sess, info, err := svcs.Sessions.RemoveRoom(c.Request.Context(), id, c.Param("roomTypeId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(sess, info))
	}
}

// @Summary  Advance to the next stage
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Failure  409 {object} ErrorResponse "stage guard failed"
// @Router   /sessions/{id}/advance [post]
func handleAdvance(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		sess, err := svcs.Sessions.Advance(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		_, info, err := svcs.Sessions.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(sess, info))
	}
}

// @Summary  Jump back to an earlier stage
// @Param    id   path  string       true  "Session ID (uuid)"
// @Param    req  body  BackRequest  true  "payload"
// @Success  200 {object} SessionResponse
// @Failure  400 {object} ErrorResponse "unknown stage / forward jump"
// @Router   /sessions/{id}/back [post]
func handleBack(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		var req BackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sess, err := svcs.Sessions.Back(c.Request.Context(), id, domain.Stage(req.Stage))
		if err != nil {
			respondErr(c, err)
			return
		}
		_, info, err := svcs.Sessions.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(sess, info))
	}
}

// @Summary  Booking summary with pricing breakdown
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SummaryResponse
// @Failure  404 {object} ErrorResponse
// @Router   /sessions/{id}/summary [get]
func handleSummary(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSessionID(c)
		if !ok {
			return
		}
		sum, err := svcs.Sessions.Summarize(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSummaryResponse(sum, taxPercentLabel(sum.TaxRate)))
	}
}

// --- Helpers ---

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func taxPercentLabel(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', -1, 64) + "%"
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// session service
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		return
	case errors.Is(err, session.ErrLocationNotSet):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "location not selected"})
		return
	case errors.Is(err, session.ErrScheduleNotSet):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "schedule not set"})
		return
	case errors.Is(err, session.ErrInvalidSchedule):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid schedule"})
		return
	case errors.Is(err, session.ErrCatalogStale):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "room catalog not loaded for current inputs"})
		return
	case errors.Is(err, session.ErrRoomTypeUnknown):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown room type"})
		return
	case errors.Is(err, session.ErrNoAvailability):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no availability for room type"})
		return
	case errors.Is(err, session.ErrFetchSuperseded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "inputs changed, refetch"})
		return
	// stage flow guards
	case errors.Is(err, booking.ErrLocationRequired),
		errors.Is(err, booking.ErrScheduleIncomplete),
		errors.Is(err, booking.ErrEmptySelection),
		errors.Is(err, booking.ErrFlowComplete):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, booking.ErrForwardJump),
		errors.Is(err, booking.ErrUnknownStage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	// locations service
	case errors.Is(err, locations.ErrLocationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "location not found"})
		return
	// catalog service
	case errors.Is(err, catalog.ErrUnavailable):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "room availability service unavailable"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
