package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest 注册请求（学员或教练自助注册）
type SignupRequest struct {
	Name       string `json:"name"       binding:"required,min=2,max=100"`
	Email      string `json:"email"      binding:"required,email"`
	Phone      string `json:"phone"      binding:"omitempty,max=30"`
	Age        *int   `json:"age"        binding:"omitempty,min=1,max=120"`
	Password   string `json:"password"   binding:"required,min=6,max=72"`
	Role       string `json:"role"       binding:"required,oneof=trainee instructor_senior instructor_junior"`
	Background string `json:"background" binding:"omitempty,max=2000"`
}
