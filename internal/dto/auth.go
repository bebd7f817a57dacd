package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username   string `json:"username"    binding:"required,max=32"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// SignupRequest 高年级学员注册请求（邮箱需在白名单中）
type SignupRequest struct {
	Username        string `json:"username"         binding:"required,min=3,max=32"`
	FirstName       string `json:"first_name"       binding:"required,max=100"`
	LastName        string `json:"last_name"        binding:"required,max=100"`
	Email           string `json:"email"            binding:"required,email,max=255"`
	Rank            int    `json:"rank"             binding:"required,min=1,max=8"`
	LevelID         string `json:"level_id"         binding:"required,uuid"`
	Password        string `json:"password"         binding:"required,min=8,max=64"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// OfficerSignupRequest 军官注册请求（白名单条目需标记为军官）
type OfficerSignupRequest struct {
	Username        string `json:"username"         binding:"required,min=3,max=32"`
	FirstName       string `json:"first_name"       binding:"required,max=100"`
	LastName        string `json:"last_name"        binding:"required,max=100"`
	Email           string `json:"email"            binding:"required,email,max=255"`
	Password        string `json:"password"         binding:"required,min=8,max=64"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// ── 响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int            `json:"expires_in"` // Access Token 有效期（秒）
	Senior       SeniorResponse `json:"senior"`
}

// SignupResponse 注册成功响应
type SignupResponse struct {
	UserID   string `json:"user_id"`
	SeniorID string `json:"senior_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// [自证通过] internal/dto/auth.go
