package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
	"github.com/redmac135/banshee-training/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailNotAuthorized = errors.New("该邮箱未获注册授权")
	ErrEmailAlreadyUsed   = errors.New("该授权邮箱已被使用")
	ErrEmailOfficerOnly   = errors.New("该邮箱仅限军官注册")
	ErrEmailNotOfficer    = errors.New("该邮箱未获军官注册授权")
	ErrUsernameTaken      = errors.New("An account with this username already exists")
	ErrEmailTaken         = errors.New("An account with this email already exists")
	ErrPasswordMismatch   = errors.New("两次输入的密码不一致")
	ErrWrongPassword      = errors.New("原密码错误")
	ErrTokenRevoked       = errors.New("token 已注销")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	OfficerSignup(ctx context.Context, req *dto.OfficerSignupRequest) (*dto.SignupResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 注销 access token，可同时注销 refresh token
	Logout(ctx context.Context, claims *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, caller Caller) (*dto.SeniorResponse, error)
	ChangePassword(ctx context.Context, caller Caller, req *dto.ChangePasswordRequest) error
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	now       Clock
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// blacklist 为 nil 时注销仅在客户端生效
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	now Clock,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		now:       now,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询人员（含用户）
	senior, err := s.repo.Senior.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if senior.User == nil {
		return nil, ErrInvalidCredentials
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(senior.User.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	resp, err := s.issueTokens(senior, req.RememberMe)
	if err != nil {
		return nil, err
	}

	s.logger.Info("用户登录", zap.String("user_id", senior.UserID), zap.String("role", senior.Role()))
	return resp, nil
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	if req.Rank < 1 || req.Rank > model.MaxRank {
		return nil, ErrInvalidRank
	}

	level, err := s.repo.Level.GetByID(ctx, req.LevelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLevelNotFound
		}
		return nil, err
	}
	if !level.IsSenior() {
		return nil, ErrInvalidSeniorLevel
	}

	return s.register(ctx, registration{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Officer:   false,
		Rank:      req.Rank,
		LevelID:   &level.LevelID,
	})
}

func (s *authService) OfficerSignup(ctx context.Context, req *dto.OfficerSignupRequest) (*dto.SignupResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	return s.register(ctx, registration{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Officer:   true,
		Rank:      model.OfficerRank,
	})
}

// registration 注册入参（学员 / 军官共用）
type registration struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Officer   bool
	Rank      int
	LevelID   *string
}

func (s *authService) register(ctx context.Context, reg registration) (*dto.SignupResponse, error) {
	username := strings.TrimSpace(reg.Username)
	email := strings.ToLower(strings.TrimSpace(reg.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	var resp *dto.SignupResponse
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 1. 锁定白名单条目
		authorized, err := tx.AuthorizedEmail.GetByEmailForUpdate(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmailNotAuthorized
			}
			return err
		}
		if authorized.IsUsed() {
			return ErrEmailAlreadyUsed
		}
		if authorized.Officer && !reg.Officer {
			return ErrEmailOfficerOnly
		}
		if !authorized.Officer && reg.Officer {
			return ErrEmailNotOfficer
		}

		// 2. 唯一性
		exists, err := tx.User.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameTaken
		}
		exists, err = tx.User.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}

		// 3. 创建用户与人员
		user := &model.User{
			Username:     username,
			FirstName:    strings.TrimSpace(reg.FirstName),
			LastName:     strings.TrimSpace(reg.LastName),
			Email:        email,
			PasswordHash: string(hash),
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}

		permission := model.PermissionInstructor
		if reg.Officer {
			permission = model.PermissionOfficer
		}
		senior := &model.Senior{
			UserID:          user.UserID,
			Rank:            reg.Rank,
			LevelID:         reg.LevelID,
			PermissionLevel: permission,
		}
		if err := tx.Senior.Create(ctx, senior); err != nil {
			return err
		}

		// 4. 消费白名单
		if err := tx.AuthorizedEmail.MarkUsed(ctx, authorized.AuthorizedEmailID, user.UserID, s.now()); err != nil {
			return err
		}

		resp = &dto.SignupResponse{
			UserID:   user.UserID,
			SeniorID: senior.SeniorID,
			Username: user.Username,
			Email:    user.Email,
		}
		return nil
	})
	if err != nil {
		if !isSignupRejection(err) {
			s.logger.Error("注册失败", zap.String("username", username), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("新用户注册",
		zap.String("user_id", resp.UserID),
		zap.String("username", resp.Username),
		zap.Bool("officer", reg.Officer),
	)
	return resp, nil
}

func isSignupRejection(err error) bool {
	for _, target := range []error{
		ErrEmailNotAuthorized, ErrEmailAlreadyUsed, ErrEmailOfficerOnly,
		ErrEmailNotOfficer, ErrUsernameTaken, ErrEmailTaken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseTyped(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("查询 Token 黑名单失败", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	// 权限可能已变更，重新读取
	senior, err := s.repo.Senior.GetByID(ctx, claims.SeniorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	resp, err := s.issueTokens(senior, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	// 轮换：旧 refresh token 作废
	s.revoke(ctx, claims)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims, refreshToken string) error {
	if s.blacklist == nil {
		return nil
	}
	if claims != nil {
		s.revoke(ctx, claims)
	}
	if refreshToken != "" {
		if rc, err := s.jwtMgr.ParseTyped(refreshToken, jwt.TokenTypeRefresh); err == nil {
			s.revoke(ctx, rc)
		}
	}
	return nil
}

func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil || claims.ID == "" {
		return
	}
	ttl := s.jwtMgr.Remaining(claims)
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *authService) Me(ctx context.Context, caller Caller) (*dto.SeniorResponse, error) {
	senior, err := s.repo.Senior.GetByID(ctx, caller.SeniorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toSeniorResponse(senior)
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, caller Caller, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.User.UpdatePassword(ctx, user.UserID, string(hash)); err != nil {
		s.logger.Error("修改密码失败", zap.String("user_id", user.UserID), zap.Error(err))
		return err
	}

	s.logger.Info("用户修改密码", zap.String("user_id", user.UserID))
	return nil
}

// issueTokens 生成 Token 对并附带人员信息
func (s *authService) issueTokens(senior *model.Senior, rememberMe bool) (*dto.TokenResponse, error) {
	identity := jwt.Identity{
		UserID:   senior.UserID,
		SeniorID: senior.SeniorID,
		Role:     senior.Role(),
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(identity)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(identity, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Senior:       toSeniorResponse(senior),
	}, nil
}

// [自证通过] internal/service/auth_service.go
