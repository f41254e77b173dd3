package app

import (
	"net/http"
	"strconv"
	"time"

	"ridelink/internal/service"
	"ridelink/internal/util"

	"github.com/gin-gonic/gin"
)

type DemandHandler struct {
	demandService service.DemandService
}

func NewDemandHandler(demandService service.DemandService) *DemandHandler {
	return &DemandHandler{demandService: demandService}
}

// CreateDemand publishes a new ride request
// POST /api/v1/demands
func (h *DemandHandler) CreateDemand(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Origin       string    `json:"origin" binding:"required"`
		Destination  string    `json:"destination" binding:"required"`
		EarliestTime time.Time `json:"earliest_time" binding:"required"`
		LatestTime   time.Time `json:"latest_time" binding:"required"`
		Seats        int       `json:"seats" binding:"required,min=1"`
		MaxPrice     float64   `json:"max_price" binding:"min=0"`
		Notes        *string   `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	demand, err := h.demandService.CreateDemand(userID.(string), service.CreateDemandInput{
		Origin:       req.Origin,
		Destination:  req.Destination,
		EarliestTime: req.EarliestTime,
		LatestTime:   req.LatestTime,
		Seats:        req.Seats,
		MaxPrice:     req.MaxPrice,
		Notes:        req.Notes,
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Demand created", gin.H{"demand": demand})
}

// ListDemands lists active demands
// GET /api/v1/demands?page=1&limit=20
func (h *DemandHandler) ListDemands(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	demands, total, err := h.demandService.ListDemands(page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Demands retrieved", gin.H{
		"demands": demands,
		"total":   total,
	})
}

// ListMyDemands lists the caller's own demands
// GET /api/v1/demands/mine
func (h *DemandHandler) ListMyDemands(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	demands, err := h.demandService.ListMyDemands(userID.(string), page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Demands retrieved", gin.H{"demands": demands})
}

// GetDemand returns one demand
// GET /api/v1/demands/:id
func (h *DemandHandler) GetDemand(c *gin.Context) {
	demand, err := h.demandService.GetDemand(c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Demand retrieved", gin.H{"demand": demand})
}

// CancelDemand cancels the caller's demand
// POST /api/v1/demands/:id/cancel
func (h *DemandHandler) CancelDemand(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.demandService.CancelDemand(c.Param("id"), userID.(string)); err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Demand cancelled", nil)
}

// RespondToDemand registers a driver response on a demand
// POST /api/v1/demands/:id/responses
func (h *DemandHandler) RespondToDemand(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Message *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	response, err := h.demandService.RespondToDemand(c.Param("id"), userID.(string), req.Message)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Response created", gin.H{"response": response})
}

// ListResponses lists responses on the caller's demand
// GET /api/v1/demands/:id/responses
func (h *DemandHandler) ListResponses(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	responses, err := h.demandService.ListResponses(c.Param("id"), userID.(string))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Responses retrieved", gin.H{"responses": responses})
}
