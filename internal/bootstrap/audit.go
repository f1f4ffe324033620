package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger records administrative events. The concrete sink is an
// operational choice; the server only depends on this interface.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
