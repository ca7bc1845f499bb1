package usecase

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// ModulePrefix prefijo de las claves de system_config que activan módulos
// del back-office, p. ej. "module.campaigns" = false.
const ModulePrefix = "module."

// ModuleService decide qué módulos del back-office están habilitados.
// Un módulo sin clave está activo; solo se desactiva con el valor JSON false.
type ModuleService struct {
	repo repository.SystemConfigRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(repo repository.SystemConfigRepository) *ModuleService {
	return &ModuleService{repo: repo}
}

// IsEnabled informa si el módulo está activo. Devuelve error solo ante fallos
// de infraestructura.
func (s *ModuleService) IsEnabled(ctx context.Context, moduleName string) (bool, error) {
	if moduleName == "" {
		return false, fmt.Errorf("module: moduleName es obligatorio")
	}
	c, err := s.repo.Get(ctx, ModulePrefix+moduleName)
	if err != nil {
		return false, err
	}
	if c == nil {
		return true, nil
	}
	return !bytes.Equal(bytes.TrimSpace(c.Value), []byte("false")), nil
}
