package registration

type Action string

const (
	ActionVerify  Action = "verify"
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
)

// Next returns the status a registration moves to when action is applied to it.
//
// verify only advances a registration still waiting for its email confirmation, so repeated
// clicks on the same link leave it untouched. Coaches, and parents when
// requireAdminForParents is set, then wait for an admin. approve and deny apply from any status.
func Next(current string, action Action, role string, requireAdminForParents bool) string {
	switch action {
	case ActionVerify:
		if current != StatusPendingEmail {
			return current
		}
		if role == RoleCoach || requireAdminForParents {
			return StatusPendingAdmin
		}
		return StatusActive
	case ActionApprove:
		return StatusActive
	case ActionDeny:
		return StatusRejected
	}
	return current
}
