package dto

// CreateNoticeRequest 发布公告
type CreateNoticeRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}
