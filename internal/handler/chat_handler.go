package handler

import (
	"net/http"

	"pocketchat/internal/domain"
	"pocketchat/internal/redis"
	"pocketchat/internal/services"
	"pocketchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *services.ChatService
	typing  *redis.TypingStore
}

func NewChatHandler(service *services.ChatService, typing *redis.TypingStore) *ChatHandler {
	return &ChatHandler{service: service, typing: typing}
}

func (h *ChatHandler) Create(c *gin.Context) {
	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	chat, err := h.service.CreateChat(c.Request.Context(), req.SenderID, req.ParticipantIDs, domain.ChatType(req.Type))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(chat))
}

func (h *ChatHandler) GetOrCreate(c *gin.Context) {
	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	chat, err := h.service.GetOrCreateChat(c.Request.Context(), req.SenderID, req.ParticipantIDs, domain.ChatType(req.Type))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(chat))
}

// List returns the caller's chats enriched with participants and last
// message. A userId query overrides the caller for admin tooling.
func (h *ChatHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		var ok bool
		userID, ok = services.UserIDFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			return
		}
	}

	chats, err := h.service.GetChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"chats": chats}))
}

func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteChat(c.Request.Context(), c.Param("chatId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": true}))
}

func (h *ChatHandler) AddParticipant(c *gin.Context) {
	var req httpdto.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	err := h.service.AddUserToChat(c.Request.Context(), req.UserID, req.Name, c.Param("chatId"), domain.Role(req.Role), req.CreatedAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"added": true}))
}

func (h *ChatHandler) SetTyping(c *gin.Context) {
	if h.typing == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("typing state unavailable", "SERVICE_UNAVAILABLE"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.TypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	chatID := c.Param("chatId")
	var err error
	if req.Typing {
		err = h.typing.SetTyping(c.Request.Context(), chatID, userID)
	} else {
		err = h.typing.ClearTyping(c.Request.Context(), chatID, userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"typing": req.Typing}))
}

func (h *ChatHandler) GetTyping(c *gin.Context) {
	if h.typing == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("typing state unavailable", "SERVICE_UNAVAILABLE"))
		return
	}

	users, err := h.typing.GetTyping(c.Request.Context(), c.Param("chatId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"typing": users}))
}
