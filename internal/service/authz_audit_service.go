package service

import (
	"strings"
	"time"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/repository"
)

// RoleChangeInput 角色变更审计输入
type RoleChangeInput struct {
	OperatorAdminID  uint
	OperatorUsername string
	TargetAdminID    uint
	TargetUsername   string
	RequestID        string
	Before           []string
	After            []string
}

// AuthzAuditService 角色变更审计服务
type AuthzAuditService struct {
	repo repository.AuthzAuditLogRepository
	now  func() time.Time
}

// NewAuthzAuditService 创建审计服务
func NewAuthzAuditService(repo repository.AuthzAuditLogRepository) *AuthzAuditService {
	return &AuthzAuditService{repo: repo, now: time.Now}
}

// RecordRoleChange 记录一次管理员角色覆盖设置，角色未变化时不写入
func (s *AuthzAuditService) RecordRoleChange(input RoleChangeInput) error {
	if s == nil || s.repo == nil || input.TargetAdminID == 0 {
		return nil
	}
	added, removed := diffRoles(input.Before, input.After)
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	return s.repo.Create(&models.AuthzAuditLog{
		OperatorAdminID:  input.OperatorAdminID,
		OperatorUsername: strings.TrimSpace(input.OperatorUsername),
		TargetAdminID:    input.TargetAdminID,
		TargetUsername:   strings.TrimSpace(input.TargetUsername),
		Action:           constants.AuthzAuditActionSetAdminRoles,
		RequestID:        strings.TrimSpace(input.RequestID),
		DetailJSON: models.JSON{
			"antes":     nonNilRoles(input.Before),
			"depois":    nonNilRoles(input.After),
			"incluidos": added,
			"removidos": removed,
		},
		CreatedAt: s.now(),
	})
}

// List 查询审计记录
func (s *AuthzAuditService) List(filter repository.AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuthzAuditLog{}, 0, nil
	}
	return s.repo.List(filter)
}

// diffRoles 计算新增与移除的角色，结果保持输入顺序
func diffRoles(before, after []string) ([]string, []string) {
	beforeSet := make(map[string]struct{}, len(before))
	for _, role := range before {
		beforeSet[role] = struct{}{}
	}
	afterSet := make(map[string]struct{}, len(after))
	added := make([]string, 0)
	for _, role := range after {
		afterSet[role] = struct{}{}
		if _, ok := beforeSet[role]; !ok {
			added = append(added, role)
		}
	}
	removed := make([]string, 0)
	for _, role := range before {
		if _, ok := afterSet[role]; !ok {
			removed = append(removed, role)
		}
	}
	return added, removed
}

func nonNilRoles(roles []string) []string {
	if roles == nil {
		return []string{}
	}
	return roles
}
