package cache

import "time"

// Cache - TTL-хранилище ключ-значение
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Stop()
}
