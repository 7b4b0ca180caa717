package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name         string
		current      string
		action       Action
		role         string
		requireAdmin bool
		want         string
	}{
		{"parent verifies", StatusPendingEmail, ActionVerify, RoleParent, false, StatusActive},
		{"parent verifies, admin approval required", StatusPendingEmail, ActionVerify, RoleParent, true, StatusPendingAdmin},
		{"coach verifies", StatusPendingEmail, ActionVerify, RoleCoach, false, StatusPendingAdmin},
		{"coach verifies, admin approval required", StatusPendingEmail, ActionVerify, RoleCoach, true, StatusPendingAdmin},
		{"verify twice", StatusPendingAdmin, ActionVerify, RoleCoach, false, StatusPendingAdmin},
		{"verify active", StatusActive, ActionVerify, RoleParent, false, StatusActive},
		{"verify rejected", StatusRejected, ActionVerify, RoleParent, false, StatusRejected},
		{"approve pending email", StatusPendingEmail, ActionApprove, RoleCoach, false, StatusActive},
		{"approve pending admin", StatusPendingAdmin, ActionApprove, RoleCoach, false, StatusActive},
		{"approve active", StatusActive, ActionApprove, RoleCoach, false, StatusActive},
		{"approve rejected", StatusRejected, ActionApprove, RoleParent, true, StatusActive},
		{"deny pending admin", StatusPendingAdmin, ActionDeny, RoleCoach, false, StatusRejected},
		{"deny active", StatusActive, ActionDeny, RoleParent, false, StatusRejected},
		{"deny rejected", StatusRejected, ActionDeny, RoleParent, false, StatusRejected},
		{"unknown action", StatusPendingEmail, Action("lol"), RoleParent, false, StatusPendingEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.current, tt.action, tt.role, tt.requireAdmin))
		})
	}
}

func TestNext_verifyNeverActivatesWhenAdminRequired(t *testing.T) {
	for _, status := range AllStatuses {
		for _, requireAdmin := range []bool{false, true} {
			got := Next(status, ActionVerify, RoleCoach, requireAdmin)
			if status != StatusActive {
				assert.NotEqual(t, StatusActive, got, "coach: %s -> %s", status, got)
			}
			got = Next(status, ActionVerify, RoleParent, true)
			if status != StatusActive {
				assert.NotEqual(t, StatusActive, got, "parent: %s -> %s", status, got)
			}
		}
	}
}
