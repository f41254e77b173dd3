package app

import (
	"net/http"
	"strconv"
	"time"

	"ridelink/internal/service"
	"ridelink/internal/util"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	offerService service.OfferService
}

func NewOfferHandler(offerService service.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// CreateOffer publishes a new ride offer
// POST /api/v1/offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Origin        string    `json:"origin" binding:"required"`
		Destination   string    `json:"destination" binding:"required"`
		DepartureTime time.Time `json:"departure_time" binding:"required"`
		Seats         int       `json:"seats" binding:"required,min=1"`
		PricePerSeat  float64   `json:"price_per_seat" binding:"min=0"`
		Notes         *string   `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	offer, err := h.offerService.CreateOffer(userID.(string), service.CreateOfferInput{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		Seats:         req.Seats,
		PricePerSeat:  req.PricePerSeat,
		Notes:         req.Notes,
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Offer created", gin.H{"offer": offer})
}

// ListOffers lists active offers
// GET /api/v1/offers?page=1&limit=20
func (h *OfferHandler) ListOffers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	offers, total, err := h.offerService.ListOffers(page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Offers retrieved", gin.H{
		"offers": offers,
		"total":  total,
	})
}

// ListMyOffers lists the caller's own offers
// GET /api/v1/offers/mine
func (h *OfferHandler) ListMyOffers(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	offers, err := h.offerService.ListMyOffers(userID.(string), page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Offers retrieved", gin.H{"offers": offers})
}

// GetOffer returns one offer
// GET /api/v1/offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	offer, err := h.offerService.GetOffer(c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Offer retrieved", gin.H{"offer": offer})
}

// CancelOffer cancels the caller's offer
// POST /api/v1/offers/:id/cancel
func (h *OfferHandler) CancelOffer(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.offerService.CancelOffer(c.Param("id"), userID.(string)); err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Offer cancelled", nil)
}
