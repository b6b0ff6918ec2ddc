package httpdto

type ProfileDetails struct {
	Email   *string  `json:"email,omitempty"`
	Picture *string  `json:"picture,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Weight  *float64 `json:"weight,omitempty"`
}

type CreateUserRequest struct {
	UserID         string          `json:"userId" binding:"required"`
	Role           string          `json:"role" binding:"required,oneof=user admin"`
	CreatedAt      int64           `json:"createdAt"`
	Name           string          `json:"name" binding:"required"`
	ProfileDetails *ProfileDetails `json:"profileDetails,omitempty"`
}

type UpdateProfileRequest struct {
	Name           *string         `json:"name,omitempty"`
	ProfileDetails *ProfileDetails `json:"profileDetails,omitempty"`
}
