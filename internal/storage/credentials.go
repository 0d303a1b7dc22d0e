package storage

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

const DefaultPrefix = "@carwash_"

// Credentials expone el token, el telefono y el perfil cacheado con
// semantica best-effort: los errores del Store se loguean y nunca se propagan.
type Credentials struct {
	store  Store
	logger *zap.Logger
	prefix string
}

func NewCredentials(store Store, prefix string, logger *zap.Logger) *Credentials {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Credentials{store: store, logger: logger, prefix: prefix}
}

func (c *Credentials) TokenKey() string { return c.prefix + "token" }
func (c *Credentials) PhoneKey() string { return c.prefix + "phone" }
func (c *Credentials) UserKey() string  { return c.prefix + "user" }

func (c *Credentials) SaveToken(ctx context.Context, token string) {
	c.save(ctx, c.TokenKey(), token)
}

func (c *Credentials) Token(ctx context.Context) string {
	return c.get(ctx, c.TokenKey())
}

func (c *Credentials) ClearToken(ctx context.Context) {
	c.remove(ctx, c.TokenKey())
}

func (c *Credentials) SavePhone(ctx context.Context, phone string) {
	c.save(ctx, c.PhoneKey(), phone)
}

func (c *Credentials) Phone(ctx context.Context) string {
	return c.get(ctx, c.PhoneKey())
}

// SaveUser cachea el perfil como JSON.
func (c *Credentials) SaveUser(ctx context.Context, profile domain.Profile) {
	data, err := json.Marshal(profile)
	if err != nil {
		c.logger.Warn("encode cached user failed", zap.Error(err))
		return
	}
	c.save(ctx, c.UserKey(), string(data))
}

// User devuelve el perfil cacheado o nil si no existe o esta corrupto.
func (c *Credentials) User(ctx context.Context) *domain.Profile {
	raw := c.get(ctx, c.UserKey())
	if raw == "" {
		return nil
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		c.logger.Warn("decode cached user failed", zap.Error(err))
		return nil
	}
	return &p
}

// ClearAll borra token, telefono y usuario. Cada borrado es independiente:
// un fallo parcial deja el resto de claves eliminadas.
func (c *Credentials) ClearAll(ctx context.Context) {
	for _, key := range []string{c.TokenKey(), c.UserKey(), c.PhoneKey()} {
		c.remove(ctx, key)
	}
}

func (c *Credentials) save(ctx context.Context, key, value string) {
	if err := c.store.Save(ctx, key, value); err != nil {
		c.logger.Warn("storage save failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Credentials) get(ctx context.Context, key string) string {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("storage get failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (c *Credentials) remove(ctx context.Context, key string) {
	if err := c.store.Remove(ctx, key); err != nil {
		c.logger.Warn("storage remove failed", zap.String("key", key), zap.Error(err))
	}
}
