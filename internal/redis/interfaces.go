package redis

import "carshare/internal/service"

// Ensure concrete types implement the service ports.
var (
	_ service.SessionLocker = (*LockStore)(nil)
	_ service.VehicleCache  = (*CacheStore)(nil)
)
