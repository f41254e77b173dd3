package app

import (
	"net/http"
	"strconv"

	"ridelink/internal/service"
	"ridelink/internal/util"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking books seats on an offer
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		OfferID string `json:"offer_id" binding:"required"`
		Seats   int    `json:"seats" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.CreateBooking(req.OfferID, userID.(string), req.Seats)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Booking created", gin.H{"booking": booking})
}

// GetBooking returns one booking visible to the caller
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Param("id"), userID.(string))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Booking retrieved", gin.H{"booking": booking})
}

// ListMyBookings lists the caller's bookings
// GET /api/v1/bookings/mine
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bookings, err := h.bookingService.ListMyBookings(userID.(string), page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Bookings retrieved", gin.H{"bookings": bookings})
}

// ListOfferBookings lists bookings on the caller's offer
// GET /api/v1/offers/:id/bookings
func (h *BookingHandler) ListOfferBookings(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	bookings, err := h.bookingService.ListOfferBookings(c.Param("id"), userID.(string))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Bookings retrieved", gin.H{"bookings": bookings})
}

// ConfirmBooking confirms a pending booking (driver only)
// POST /api/v1/bookings/:id/confirm
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.bookingService.ConfirmBooking(c.Param("id"), userID.(string)); err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Booking confirmed", nil)
}

// CancelBooking cancels a booking (either party)
// POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.bookingService.CancelBooking(c.Param("id"), userID.(string)); err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Booking cancelled", nil)
}
