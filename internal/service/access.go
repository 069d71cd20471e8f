package service

import "carshare/internal/domain"

// CanAccess reports whether requester may see or act on a resource owned by ownerID.
func CanAccess(requester domain.Requester, ownerID string) bool {
	if requester.IsAdmin() {
		return true
	}
	return requester.ID != "" && requester.ID == ownerID
}
