package httpdto

type TokenRequest struct {
	UserID string `json:"userId" binding:"required"`
}
