package cache

import "time"

// Cache defines the interface for in-process memoization
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Len() int
	Clear()
}

// Key namespaces a memo key so different users of one cache never collide
func Key(namespace, raw string) string {
	return "newsclean:v1:" + namespace + ":" + raw
}
