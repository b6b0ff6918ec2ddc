package httpdto

type SendMessageRequest struct {
	ChatID   string  `json:"chatId" binding:"required"`
	SenderID string  `json:"senderId" binding:"required"`
	Content  string  `json:"content"`
	Type     string  `json:"type" binding:"required,oneof=text image video audio file"`
	MediaURL *string `json:"mediaUrl,omitempty"`
}
