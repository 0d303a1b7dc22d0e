package config

import "go.uber.org/zap"

// NewLogger construye el logger de producción con el nivel indicado. Un
// nivel desconocido cae a info.
func NewLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}
	return zcfg.Build()
}
