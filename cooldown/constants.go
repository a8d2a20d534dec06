package cooldown

// Storage types
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// DefaultRedisKey is the hash key used by the redis store when none is configured.
const DefaultRedisKey = "cooldown:groups"

// fileIndent matches the layout of existing cooldown documents.
const fileIndent = "    "
