package cache

import "time"

const (
	CacheVersion        = "v1"
	UserByPublicIDKey   = CacheVersion + ":user:public_id:%s"
	UserLockKey         = CacheVersion + ":user:lock:%s"
	RevokedTokenKey     = CacheVersion + ":auth:revoked:%s"
	UserCacheExpiration = 10 * time.Minute
	UserLockTTL         = 10 * time.Second
)
