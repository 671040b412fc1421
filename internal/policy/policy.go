// Package policy decides which roles may perform which actions.
//
// Decisions are pure: they depend only on the caller's role and the action.
// Ownership rules (an EMPLOYEE touching only tasks assigned to them) and the
// status workflow are applied by the task service on top of these decisions.
package policy

import "github.com/flowtrack/flowtrack-api/internal/models"

// Action names an operation gated by role.
type Action string

const (
	ActionCreateTask          Action = "create_task"
	ActionListTasks           Action = "list_tasks"
	ActionViewTask            Action = "view_task"
	ActionViewUnassignedTasks Action = "view_unassigned_tasks"
	ActionUpdateTaskStatus    Action = "update_task_status"
	ActionAssignTask          Action = "assign_task"
	ActionDraftTasks          Action = "draft_tasks"
	ActionCreateUser          Action = "create_user"
	ActionListAllUsers        Action = "list_all_users"
	ActionListEmployeeUsers   Action = "list_employee_users"
	ActionElevatedProbe       Action = "elevated_probe"
)

var everyone = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleEmployee}

var privileged = []models.Role{models.RoleAdmin, models.RoleManager}

var rules = map[Action][]models.Role{
	ActionCreateTask:          privileged,
	ActionListTasks:           everyone,
	ActionViewTask:            everyone,
	ActionViewUnassignedTasks: privileged,
	ActionUpdateTaskStatus:    everyone,
	ActionAssignTask:          privileged,
	ActionDraftTasks:          privileged,
	ActionCreateUser:          privileged,
	ActionListAllUsers:        {models.RoleAdmin},
	ActionListEmployeeUsers:   privileged,
	ActionElevatedProbe:       privileged,
}

// Allows reports whether role may perform action. Unknown actions and roles are denied.
func Allows(role models.Role, action Action) bool {
	for _, r := range rules[action] {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFor returns the roles allowed to perform action.
func RolesFor(action Action) []models.Role {
	allowed := rules[action]
	out := make([]models.Role, len(allowed))
	copy(out, allowed)
	return out
}

// BypassesWorkflow reports whether role may set any status regardless of the
// transition table. ADMIN and MANAGER can move a task anywhere, including back
// out of DONE.
func BypassesWorkflow(role models.Role) bool {
	return role.IsPrivileged()
}

// RestrictedToOwnTasks reports whether role only sees tasks assigned to itself.
func RestrictedToOwnTasks(role models.Role) bool {
	return role == models.RoleEmployee
}
