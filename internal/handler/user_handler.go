package handler

import (
	"net/http"

	"pocketchat/internal/domain"
	"pocketchat/internal/services"
	"pocketchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req httpdto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), services.CreateUserInput{
		ExternalID:     req.UserID,
		Role:           domain.Role(req.Role),
		CreatedAt:      req.CreatedAt,
		Name:           req.Name,
		ProfileDetails: profileDetailsFromDTO(req.ProfileDetails),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(user))
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.ReadUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(user))
}

func (h *UserHandler) Search(c *gin.Context) {
	callerID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	users, err := h.service.SearchUsers(c.Request.Context(), c.Query("q"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"users": users}))
}

func (h *UserHandler) Update(c *gin.Context) {
	var req httpdto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	user, err := h.service.UpdateProfileDetails(c.Request.Context(), c.Param("userId"), services.UpdateProfileInput{
		Name:           req.Name,
		ProfileDetails: profileDetailsFromDTO(req.ProfileDetails),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(user))
}

func profileDetailsFromDTO(d *httpdto.ProfileDetails) *domain.ProfileDetails {
	if d == nil {
		return nil
	}
	return &domain.ProfileDetails{
		Email:   d.Email,
		Picture: d.Picture,
		Height:  d.Height,
		Weight:  d.Weight,
	}
}
