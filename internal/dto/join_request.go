package dto

// CreateJoinRequest 访客提交入会申请
type CreateJoinRequest struct {
	Name    string `json:"name"    binding:"required,min=2,max=100"`
	Email   string `json:"email"   binding:"required,email"`
	Phone   string `json:"phone"   binding:"omitempty,max=30"`
	Message string `json:"message" binding:"omitempty,max=2000"`
}
