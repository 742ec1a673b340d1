package cache

import (
	"crypto/md5"
	"fmt"
)

// KeyPrefix - префиксы для разных типов ключей
type KeyPrefix string

const (
	PrefixLink      KeyPrefix = "link"     // link:shortURL
	PrefixOriginal  KeyPrefix = "original" // original:hash(originalURL)
	PrefixClicks    KeyPrefix = "clicks"   // clicks:shortURL
	PrefixRateLimit KeyPrefix = "rate"     // rate:clientIP
)

// KeyBuilder - построитель ключей кэша
type KeyBuilder struct {
	namespace string // Опциональный namespace для multi-tenancy
}

// NewKeyBuilder создает новый построитель ключей
func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{namespace: namespace}
}

// Build создает ключ с префиксом и опциональным namespace
func (k *KeyBuilder) Build(prefix KeyPrefix, parts ...string) string {
	key := string(prefix)

	if k.namespace != "" {
		key = k.namespace + ":" + key
	}

	for _, part := range parts {
		key += ":" + part
	}

	return key
}

// Link создает ключ для хранения ссылки по короткому коду
func (k *KeyBuilder) Link(shortURL string) string {
	return k.Build(PrefixLink, shortURL)
}

// Original создает ключ для обратного маппинга (originalURL -> shortURL)
func (k *KeyBuilder) Original(originalURL string) string {
	return k.Build(PrefixOriginal, hashURL(originalURL))
}

// Clicks создает ключ для счетчика кликов
func (k *KeyBuilder) Clicks(shortURL string) string {
	return k.Build(PrefixClicks, shortURL)
}

// RateLimit создает ключ для rate limiting
func (k *KeyBuilder) RateLimit(clientIP string) string {
	return k.Build(PrefixRateLimit, clientIP)
}

// hashURL создает хэш от URL для использования в ключе
func hashURL(url string) string {
	h := md5.Sum([]byte(url))
	return fmt.Sprintf("%x", h)
}

// DefaultKeyBuilder - построитель ключей по умолчанию
var DefaultKeyBuilder = NewKeyBuilder("")

var CacheKeys = struct {
	Link      func(string) string
	Original  func(string) string
	Clicks    func(string) string
	RateLimit func(string) string
}{
	Link:      DefaultKeyBuilder.Link,
	Original:  DefaultKeyBuilder.Original,
	Clicks:    DefaultKeyBuilder.Clicks,
	RateLimit: DefaultKeyBuilder.RateLimit,
}
