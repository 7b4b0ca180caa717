package core

// Flags are process-wide feature switches, read once at startup.
type Flags struct {
	EmailNotifications             bool
	RequireAdminApprovalForParents bool
	GoLive                         bool
	LocalAdminBypass               bool
}
