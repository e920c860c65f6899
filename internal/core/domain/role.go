package domain

import "strings"

// Role is the closed set of user roles.
type Role string

const (
	RoleConducteur Role = "conducteur"
	RoleExpediteur Role = "expediteur"
	RoleAdmin      Role = "admin"
)

// ParseRole converts a raw claim or payload value into a Role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleConducteur, RoleExpediteur, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Action names an operation guarded by the permission table.
type Action string

const (
	ActionCreateAnnonce  Action = "annonce:create"
	ActionManageAnnonce  Action = "annonce:manage"
	ActionDeleteAnnonce  Action = "annonce:delete"
	ActionCreateDemande  Action = "demande:create"
	ActionRespondDemande Action = "demande:respond"
	ActionUpdateStatus   Action = "demande:update_status"
	ActionCancelDemande  Action = "demande:cancel"
	ActionSendMessage    Action = "demande:message"
	ActionEvaluate       Action = "demande:evaluate"
	ActionReportPosition Action = "demande:position"
	ActionViewAdminStats Action = "stats:admin"
)

var permissions = map[Action][]Role{
	ActionCreateAnnonce:  {RoleConducteur},
	ActionManageAnnonce:  {RoleConducteur},
	ActionDeleteAnnonce:  {RoleConducteur, RoleAdmin},
	ActionCreateDemande:  {RoleExpediteur},
	ActionRespondDemande: {RoleConducteur},
	ActionUpdateStatus:   {RoleConducteur},
	ActionCancelDemande:  {RoleExpediteur},
	ActionSendMessage:    {RoleConducteur, RoleExpediteur},
	ActionEvaluate:       {RoleExpediteur},
	ActionReportPosition: {RoleConducteur},
	ActionViewAdminStats: {RoleAdmin},
}

// Can reports whether the role is allowed to perform the action.
func (r Role) Can(a Action) bool {
	for _, allowed := range permissions[a] {
		if allowed == r {
			return true
		}
	}
	return false
}
