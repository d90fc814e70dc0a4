package dnd5e

//go:generate mockgen -destination=mock/mock_client.go -package=mockdnd5e . Client

import (
	"context"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
)

// Client reads catalog data from the D&D 5e API and converts it into
// engine types
type Client interface {
	GetWeapon(ctx context.Context, key string) (*equipment.Weapon, error)
	GetArmor(ctx context.Context, key string) (*equipment.Armor, error)
	GetMonster(ctx context.Context, key string) (*monster.Template, error)

	// ListEquipmentKeys lists the keys in an equipment category such as "weapon"
	ListEquipmentKeys(ctx context.Context, category string) ([]string, error)
	// ListMonsterKeysByCR lists monsters whose challenge rating is in range
	ListMonsterKeysByCR(ctx context.Context, minCR, maxCR float64) ([]string, error)
}
