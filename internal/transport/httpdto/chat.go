package httpdto

type CreateChatRequest struct {
	SenderID       string   `json:"senderId" binding:"required"`
	ParticipantIDs []string `json:"participantIds" binding:"required"`
	Type           string   `json:"type" binding:"required,oneof=private group"`
}

type AddParticipantRequest struct {
	UserID    string `json:"userId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Role      string `json:"role" binding:"required,oneof=user admin"`
	CreatedAt int64  `json:"createdAt"`
}

type TypingRequest struct {
	Typing bool `json:"typing"`
}
