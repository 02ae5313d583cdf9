package roleexchange

import "context"

// PeerTransport is the seam over which RoleRequest/RoleResponse messages
// travel. A concrete wire transport (HTTP callback, message queue) is a
// host integration detail and lives outside this package.
type PeerTransport interface {
	Send(ctx context.Context, agentID string, req RoleRequest) (RoleResponse, error)
}
