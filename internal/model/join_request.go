package model

import "time"

// JoinRequestPending 新建申请的状态
const JoinRequestPending = "pending"

// JoinRequest 公开的入会申请 — 对应 join_requests
type JoinRequest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
