package dto

// ── 用户模块 DTO ──

// UpdateProfileRequest 用户修改自己的资料
type UpdateProfileRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Email      *string `json:"email"      binding:"omitempty,email"`
	Phone      *string `json:"phone"      binding:"omitempty,max=30"`
	Age        *int    `json:"age"        binding:"omitempty,min=1,max=120"`
	Background *string `json:"background" binding:"omitempty,max=2000"`
}

// AdminUpdateUserRequest 管理员修改角色、状态或当前课程
type AdminUpdateUserRequest struct {
	Role          *string `json:"role"           binding:"omitempty,oneof=admin staff instructor_senior instructor_junior trainee"`
	Status        *string `json:"status"         binding:"omitempty,oneof=active in_training solo graduate"`
	CurrentLesson *int    `json:"current_lesson" binding:"omitempty,min=1,max=10"`
}

// RemoveStrikeRequest 撤销一次缺席记录
type RemoveStrikeRequest struct {
	Reason  string `json:"reason"  binding:"required,max=500"`
	Notes   string `json:"notes"   binding:"omitempty,max=2000"`
	Confirm bool   `json:"confirm"`
}

// ConfirmRequest 破坏性操作的确认
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}
