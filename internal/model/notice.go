package model

import "time"

// Notice 公告 — 对应 notices
type Notice struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedBy *string   `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
