package tools

import (
	"context"

	"chatcli/internal/permission"
)

const (
	readKind  = permission.KindRead
	writeKind = permission.KindWrite
)

// gateChecker is the slice of the permission gate the file tools need.
type gateChecker interface {
	Check(ctx context.Context, kind permission.Kind, absPath string) bool
}
