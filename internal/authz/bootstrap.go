package authz

import (
	"fmt"
	"strings"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "commission_viewer",
			Policies: []Policy{
				{Object: "/admin/commission-sync/jobs", Action: "GET"},
				{Object: "/admin/commission-sync/jobs/:id", Action: "GET"},
				{Object: "/admin/commissions", Action: "GET"},
				{Object: "/admin/settlements/:id", Action: "GET"},
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/notifications", Action: "GET"},
				{Object: "/admin/authz/me", Action: "GET"},
				{Object: "/admin/logout", Action: "POST"},
				{Object: "/admin/authz/roles", Action: "GET"},
				{Object: "/admin/authz/permissions/catalog", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "commission_operator",
			Inherits: []string{"commission_viewer"},
			Policies: []Policy{
				// 交互式同步会写台账，只读角色不可用
				{Object: "/admin/commission-sync/stream", Action: "GET"},
				{Object: "/admin/commission-sync/jobs", Action: "POST"},
				{Object: "/admin/commissions/generate", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "commission_admin",
			Inherits: []string{"commission_operator"},
			Policies: []Policy{
				{Object: "/admin/commissions/adjust", Action: "POST"},
				{Object: "/admin/authz/admins/:id/roles", Action: "GET"},
				{Object: "/admin/authz/admins/:id/roles", Action: "PUT"},
				{Object: "/admin/authz/audit-logs", Action: "GET"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 按内置矩阵对齐角色策略与继承关系
// Immutable 角色上多出的策略会被移除，其余角色只补不删
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		if err := s.syncRoleSeed(seed); err != nil {
			return fmt.Errorf("bootstrap role %s failed: %w", seed.Role, err)
		}
	}
	return nil
}

func (s *Service) syncRoleSeed(seed RoleSeed) error {
	role, err := NormalizeRole(seed.Role)
	if err != nil {
		return err
	}

	desired := make(map[string][]string, len(seed.Policies))
	for _, policy := range seed.Policies {
		if NormalizeAction(policy.Action) == "" {
			return fmt.Errorf("builtin policy action is required")
		}
		rule := policy.rule(role)
		desired[ruleKey(rule)] = rule
	}

	current, err := s.enforcer.GetFilteredPolicy(0, role)
	if err != nil {
		return err
	}
	stale := make([][]string, 0)
	for _, rule := range current {
		key := ruleKey(rule)
		if _, ok := desired[key]; ok {
			delete(desired, key)
			continue
		}
		if seed.Immutable {
			stale = append(stale, rule)
		}
	}
	if len(stale) > 0 {
		if _, err := s.enforcer.RemovePolicies(stale); err != nil {
			return err
		}
	}
	if len(desired) > 0 {
		missing := make([][]string, 0, len(desired))
		for _, rule := range desired {
			missing = append(missing, rule)
		}
		if _, err := s.enforcer.AddPolicies(missing); err != nil {
			return err
		}
	}

	for _, parent := range seed.Inherits {
		parentRole, err := NormalizeRole(parent)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddGroupingPolicy(role, parentRole); err != nil {
			return err
		}
	}
	return nil
}

func ruleKey(rule []string) string {
	return strings.Join(rule, "|")
}
