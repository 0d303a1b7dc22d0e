package location

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"carwash-client/internal/storage"
)

// StaticPositioner devuelve siempre el mismo fix. Lo usa el CLI cuando no
// hay API key de geolocalizacion.
type StaticPositioner struct {
	mu  sync.Mutex
	fix *Fix
}

func NewStaticPositioner(latitude, longitude float64) *StaticPositioner {
	return &StaticPositioner{fix: &Fix{Latitude: latitude, Longitude: longitude}}
}

// Set cambia el fix; nil simula un dispositivo sin posicion.
func (p *StaticPositioner) Set(fix *Fix) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fix = fix
}

func (p *StaticPositioner) CurrentPosition(_ context.Context) (Fix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fix == nil {
		return Fix{}, ErrNoFix
	}
	return *p.fix, nil
}

// StoredPermissions persiste el consentimiento de ubicacion en el Store.
// Los fallos del almacen se registran y cuentan como permiso ausente.
type StoredPermissions struct {
	store  storage.Store
	key    string
	logger *zap.Logger
}

func NewStoredPermissions(store storage.Store, prefix string, logger *zap.Logger) *StoredPermissions {
	if prefix == "" {
		prefix = storage.DefaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoredPermissions{store: store, key: prefix + "location_permission", logger: logger}
}

func (p *StoredPermissions) Granted(ctx context.Context) bool {
	v, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		p.logger.Warn("storage read failed", zap.String("key", p.key), zap.Error(err))
		return false
	}
	return ok && v == "granted"
}

func (p *StoredPermissions) SetGranted(ctx context.Context, granted bool) {
	v := "denied"
	if granted {
		v = "granted"
	}
	if err := p.store.Save(ctx, p.key, v); err != nil {
		p.logger.Warn("storage save failed", zap.String("key", p.key), zap.Error(err))
	}
}
