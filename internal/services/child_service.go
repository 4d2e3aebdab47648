package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BradenHooton/family-album/internal/models"
	pkglogger "github.com/BradenHooton/family-album/pkg/logger"
)

// ChildRepository defines the storage operations for children
type ChildRepository interface {
	List(ctx context.Context, familyID string) ([]*models.Child, error)
	GetByID(ctx context.Context, familyID, id string) (*models.Child, error)
	Create(ctx context.Context, child *models.Child) (*models.Child, error)
	Update(ctx context.Context, child *models.Child) (*models.Child, error)
	Delete(ctx context.Context, familyID, id string) error
}

// SkillRepository defines the storage operations for skills
type SkillRepository interface {
	ListByChild(ctx context.Context, familyID, childID string) ([]*models.Skill, error)
	GetByID(ctx context.Context, familyID, id string) (*models.Skill, error)
	Create(ctx context.Context, familyID string, skill *models.Skill) (*models.Skill, error)
	Update(ctx context.Context, familyID string, skill *models.Skill) (*models.Skill, error)
	UpdateProgress(ctx context.Context, familyID, id string, progress int) (*models.Skill, error)
	Delete(ctx context.Context, familyID, id string) error
}

// ChildService manages children and their skill trackers
type ChildService struct {
	children    ChildRepository
	skills      SkillRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewChildService creates a new ChildService
func NewChildService(children ChildRepository, skills SkillRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ChildService {
	return &ChildService{
		children:    children,
		skills:      skills,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

func (s *ChildService) ListChildren(ctx context.Context, familyID string) ([]*models.Child, error) {
	return s.children.List(ctx, familyID)
}

func (s *ChildService) CreateChild(ctx context.Context, familyID string, child *models.Child) (*models.Child, error) {
	child.FamilyID = familyID
	child.Name = strings.TrimSpace(child.Name)

	created, err := s.children.Create(ctx, child)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogContentChange("child_created", familyID, created.ID, nil)
	return created, nil
}

func (s *ChildService) UpdateChild(ctx context.Context, familyID, id string, child *models.Child) (*models.Child, error) {
	child.ID = id
	child.FamilyID = familyID
	child.Name = strings.TrimSpace(child.Name)

	updated, err := s.children.Update(ctx, child)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogContentChange("child_updated", familyID, id, nil)
	return updated, nil
}

// DeleteChild removes the child, its skills and its post tags
func (s *ChildService) DeleteChild(ctx context.Context, familyID, id string) error {
	if err := s.children.Delete(ctx, familyID, id); err != nil {
		return err
	}
	s.auditLogger.LogContentChange("child_deleted", familyID, id, nil)
	return nil
}

func (s *ChildService) ListSkills(ctx context.Context, familyID, childID string) ([]*models.Skill, error) {
	if _, err := s.children.GetByID(ctx, familyID, childID); err != nil {
		return nil, err
	}
	return s.skills.ListByChild(ctx, familyID, childID)
}

func (s *ChildService) CreateSkill(ctx context.Context, familyID, childID string, skill *models.Skill) (*models.Skill, error) {
	skill.ChildID = childID
	skill.Name = strings.TrimSpace(skill.Name)

	created, err := s.skills.Create(ctx, familyID, skill)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogContentChange("skill_created", familyID, created.ID, map[string]string{"child_id": childID})
	return created, nil
}

func (s *ChildService) UpdateSkill(ctx context.Context, familyID, id string, skill *models.Skill) (*models.Skill, error) {
	skill.ID = id
	skill.Name = strings.TrimSpace(skill.Name)

	updated, err := s.skills.Update(ctx, familyID, skill)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogContentChange("skill_updated", familyID, id, nil)
	return updated, nil
}

func (s *ChildService) UpdateSkillProgress(ctx context.Context, familyID, id string, progress int) (*models.Skill, error) {
	if progress < 0 || progress > 100 {
		return nil, models.ErrBadRequest
	}
	return s.skills.UpdateProgress(ctx, familyID, id, progress)
}

func (s *ChildService) DeleteSkill(ctx context.Context, familyID, id string) error {
	if err := s.skills.Delete(ctx, familyID, id); err != nil {
		return err
	}
	s.auditLogger.LogContentChange("skill_deleted", familyID, id, nil)
	return nil
}
