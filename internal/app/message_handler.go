package app

import (
	"net/http"
	"strconv"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/service"
	"ridelink/internal/util"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService      service.MessageService
	conversationService service.ConversationService
}

func NewMessageHandler(
	messageService service.MessageService,
	conversationService service.ConversationService,
) *MessageHandler {
	return &MessageHandler{
		messageService:      messageService,
		conversationService: conversationService,
	}
}

// rideRef parses the :rideType/:rideId path segments.
func rideRef(c *gin.Context) (model.RideRef, bool) {
	rideType, err := model.ParseRideType(c.Param("rideType"))
	if err != nil {
		util.BadRequest(c, err.Error())
		return model.RideRef{}, false
	}
	rideID := c.Param("rideId")
	if rideID == "" {
		util.BadRequest(c, "ride id is required")
		return model.RideRef{}, false
	}
	return model.RideRef{Type: rideType, ID: rideID}, true
}

// SendMessage sends a message on a ride
// POST /api/v1/rides/:rideType/:rideId/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	ride, ok := rideRef(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messageService.SendMessage(ride, userID.(string), req.Content)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Message sent", gin.H{"message": msg})
}

// GetRideMessages returns the thread between the caller and ?with=
// GET /api/v1/rides/:rideType/:rideId/messages?with=xxx&page=1&limit=50
func (h *MessageHandler) GetRideMessages(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	ride, ok := rideRef(c)
	if !ok {
		return
	}

	otherUserID := c.Query("with")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.messageService.GetRideMessages(ride, userID.(string), otherUserID, page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Messages retrieved", gin.H{"messages": messages})
}

// MarkConversationRead marks all unread messages to the caller on the ride
// PUT /api/v1/rides/:rideType/:rideId/messages/read
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	ride, ok := rideRef(c)
	if !ok {
		return
	}

	count, err := h.messageService.MarkConversationRead(ride, userID.(string))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Conversation marked as read", gin.H{"updated": count})
}

// DeleteConversation hides the ride's messages from the caller's view
// DELETE /api/v1/rides/:rideType/:rideId/messages
func (h *MessageHandler) DeleteConversation(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	ride, ok := rideRef(c)
	if !ok {
		return
	}

	count, err := h.messageService.DeleteConversation(ride, userID.(string))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Conversation deleted", gin.H{"deleted": count})
}

// GetConversationList lists the caller's conversations, newest first
// GET /api/v1/conversations?page=1&limit=50
func (h *MessageHandler) GetConversationList(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	conversations, err := h.conversationService.GetConversationList(userID.(string), page, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Conversations retrieved", gin.H{"conversations": conversations})
}

// GetUnreadCount returns the caller's total unread message count
// GET /api/v1/messages/unread/count
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	count, err := h.messageService.GetUnreadCount(userID.(string))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread count retrieved", gin.H{"count": count})
}

// EditMessage edits a message's content within the edit window
// PUT /api/v1/messages/:id
func (h *MessageHandler) EditMessage(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messageService.EditMessage(c.Param("id"), userID.(string), req.Content)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Message updated", gin.H{"message": msg})
}

// DeleteMessage deletes a message for the caller, or for everyone
// DELETE /api/v1/messages/:id?for_everyone=true
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	forEveryone := c.Query("for_everyone") == "true"

	if err := h.messageService.DeleteMessage(c.Param("id"), userID.(string), forEveryone); err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Message deleted", nil)
}

// MarkMessageRead marks one message as read (recipient only)
// PUT /api/v1/messages/:id/read
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	msg, err := h.messageService.MarkMessageRead(c.Param("id"), userID.(string))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Message marked as read", gin.H{"message": msg})
}

// LegacyChatMessages rejects the retired global chat endpoints
// ANY /api/v1/chat/messages
func (h *MessageHandler) LegacyChatMessages(c *gin.Context) {
	util.RespondError(c, apperr.Deprecated("this endpoint has been replaced by /api/v1/rides/:rideType/:rideId/messages"))
}
