package dnd5e

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	apiEntities "github.com/fadedpez/dnd5e-api/entities"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// The API has no context support; each call checks ctx before going out
type client struct {
	client dnd5e.Interface
	logger *zap.Logger
}

type Config struct {
	HttpClient *http.Client
	// BaseURL redirects requests to a mirror of the API when set
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("cfg is required")
	}

	httpClient := cfg.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil || base.Host == "" {
			return nil, dnderr.InvalidArgumentf("invalid dnd5e base url %q", cfg.BaseURL)
		}
		next := httpClient.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		httpClient.Transport = &rewriteTransport{base: base, next: next}
	}

	dndClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client: httpClient,
	})
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to create dnd5e api client")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &client{
		client: dndClient,
		logger: logger,
	}, nil
}

// rewriteTransport sends every request to base's scheme and host
type rewriteTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = t.base.Scheme
	clone.URL.Host = t.base.Host
	clone.Host = t.base.Host
	return t.next.RoundTrip(clone)
}

func (c *client) GetWeapon(ctx context.Context, key string) (*equipment.Weapon, error) {
	response, err := c.getEquipment(ctx, key)
	if err != nil {
		return nil, err
	}

	weapon, ok := response.(*apiEntities.Weapon)
	if !ok {
		return nil, dnderr.InvalidArgumentf("equipment %s is not a weapon", key)
	}
	return apiWeaponToWeapon(weapon)
}

func (c *client) GetArmor(ctx context.Context, key string) (*equipment.Armor, error) {
	response, err := c.getEquipment(ctx, key)
	if err != nil {
		return nil, err
	}

	armor, ok := response.(*apiEntities.Armor)
	if !ok {
		return nil, dnderr.InvalidArgumentf("equipment %s is not armor", key)
	}
	return apiArmorToArmor(armor)
}

func (c *client) getEquipment(ctx context.Context, key string) (any, error) {
	if key == "" {
		return nil, dnderr.InvalidArgument("equipment key is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	response, err := c.client.GetEquipment(key)
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to get equipment "+key)
	}
	if response == nil {
		return nil, dnderr.NotFoundf("equipment %s not found", key)
	}
	return response, nil
}

func (c *client) GetMonster(ctx context.Context, key string) (*monster.Template, error) {
	if key == "" {
		return nil, dnderr.InvalidArgument("monster key is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	response, err := c.client.GetMonster(key)
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to get monster "+key)
	}
	if response == nil {
		return nil, dnderr.NotFoundf("monster %s not found", key)
	}
	return apiMonsterToTemplate(response), nil
}

func (c *client) ListEquipmentKeys(ctx context.Context, category string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	categoryData, err := c.client.GetEquipmentCategory(category)
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to get equipment category "+category)
	}

	keys := make([]string, 0, len(categoryData.Equipment))
	for _, ref := range categoryData.Equipment {
		if ref.Key != "" {
			keys = append(keys, ref.Key)
		}
	}
	return keys, nil
}

// ListMonsterKeysByCR queries each standard challenge rating in range. The
// API only filters by exact rating.
func (c *client) ListMonsterKeysByCR(ctx context.Context, minCR, maxCR float64) ([]string, error) {
	seen := make(map[string]bool)
	for _, cr := range crValuesInRange(minCR, maxCR) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rating := cr
		refs, err := c.client.ListMonstersWithFilter(&dnd5e.ListMonstersInput{
			ChallengeRating: &rating,
		})
		if err != nil {
			c.logger.Warn("failed to list monsters", zap.Float64("challenge_rating", cr), zap.Error(err))
			continue
		}
		for _, ref := range refs {
			if ref.Key != "" {
				seen[ref.Key] = true
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

var standardCRs = []float64{0, 0.125, 0.25, 0.5, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30}

func crValuesInRange(minCR, maxCR float64) []float64 {
	var result []float64
	for _, cr := range standardCRs {
		if cr >= minCR && cr <= maxCR {
			result = append(result, cr)
		}
	}
	return result
}
