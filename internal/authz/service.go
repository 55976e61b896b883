package authz

import (
	"errors"
	"fmt"
	"sort"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

var (
	ErrServiceUnavailable = errors.New("authz service unavailable")
	ErrAdminIDRequired    = errors.New("admin id is required")
	ErrUnknownRole        = errors.New("unknown role")
)

// Service 基于 casbin 的管理端授权，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	// 每次增删策略立即落库
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrServiceUnavailable
	}
	return nil
}

// EnforceAdmin 判定管理员能否访问 obj
func (s *Service) EnforceAdmin(adminID uint, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.enforcer.Enforce(SubjectForAdmin(adminID), NormalizeObject(obj), NormalizeAction(act))
}

// GrantRolePolicy 给角色追加一条策略，已存在时忽略
func (s *Service) GrantRolePolicy(role, object, action string) error {
	if err := s.ready(); err != nil {
		return err
	}
	roleName, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	policy := Policy{Object: object, Action: action}
	if NormalizeAction(action) == "" {
		return fmt.Errorf("action is required")
	}
	if _, err := s.enforcer.AddPolicy(policy.rule(roleName)); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// ListRoles 返回持有策略的角色，按名称排序
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subjects, err := s.enforcer.GetAllSubjects()
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roles := make([]string, 0, len(subjects))
	seen := make(map[string]struct{}, len(subjects))
	for _, subject := range subjects {
		if _, dup := seen[subject]; dup || !isRole(subject) {
			continue
		}
		seen[subject] = struct{}{}
		roles = append(roles, subject)
	}
	sort.Strings(roles)
	return roles, nil
}

// SetAdminRoles 用 roles 整体替换管理员的角色；只接受已定义的角色
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return ErrAdminIDRequired
	}
	known, err := s.ListRoles()
	if err != nil {
		return err
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, role := range known {
		knownSet[role] = struct{}{}
	}

	subject := SubjectForAdmin(adminID)
	links := make([][]string, 0, len(roles))
	picked := make(map[string]struct{}, len(roles))
	for _, raw := range roles {
		role, err := NormalizeRole(raw)
		if err != nil {
			return err
		}
		if _, ok := knownSet[role]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRole, role)
		}
		if _, dup := picked[role]; dup {
			continue
		}
		picked[role] = struct{}{}
		links = append(links, []string{subject, role})
	}

	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear admin roles failed: %w", err)
	}
	if len(links) == 0 {
		return nil
	}
	if _, err := s.enforcer.AddNamedGroupingPolicies("g", links); err != nil {
		return fmt.Errorf("assign admin roles failed: %w", err)
	}
	return nil
}

// GetAdminRoles 管理员直接持有的角色
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if adminID == 0 {
		return nil, ErrAdminIDRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	assigned, err := s.enforcer.GetRolesForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin roles failed: %w", err)
	}
	roles := make([]string, 0, len(assigned))
	for _, role := range assigned {
		if isRole(role) {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// AdminPermissions 展开角色继承后的全部策略
func (s *Service) AdminPermissions(adminID uint) ([]Policy, error) {
	if adminID == 0 {
		return nil, ErrAdminIDRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetImplicitPermissionsForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin permissions failed: %w", err)
	}
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if policy, ok := policyFromRule(rule); ok {
			policies = append(policies, policy)
		}
	}
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object == policies[j].Object {
			return policies[i].Action < policies[j].Action
		}
		return policies[i].Object < policies[j].Object
	})
	return policies, nil
}
