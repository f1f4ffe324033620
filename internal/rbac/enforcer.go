package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Roles carried in the token. The set is fixed, so the policy is static and
// lives here rather than in a database.
const (
	RoleEmployee   = "employee"
	RoleSupervisor = "supervisor"
	RoleHR         = "hr"
	RoleAdmin      = "admin"
)

// NewEnforcer builds the casbin enforcer with the static role policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	policies := [][]string{
		{RoleEmployee, "application", "create"},
		{RoleEmployee, "application", "read"},
		{RoleEmployee, "credit", "read"},
		{RoleEmployee, "employee", "read"},
		{RoleSupervisor, "application", "decide"},
		{RoleHR, "credit", "issue"},
		{RoleHR, "credit", "rollback"},
		{RoleHR, "employee", "manage"},
		{RoleHR, "designation", "manage"},
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	groupings := [][]string{
		{RoleSupervisor, RoleEmployee},
		{RoleHR, RoleSupervisor},
		{RoleAdmin, RoleHR},
	}
	for _, g := range groupings {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return e, nil
}
