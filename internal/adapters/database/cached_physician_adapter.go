package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/providers"
	"github.com/smartmed/consultas/internal/domain/repositories"
)

// CachedPhysicianAdapter wraps PhysicianAdapter with caching. Physician
// rows change rarely but are read on every scheduling attempt.
type CachedPhysicianAdapter struct {
	adapter repositories.PhysicianRepository
	cache   providers.CacheProvider
}

// NewCachedPhysicianAdapter creates a new cached physician adapter
func NewCachedPhysicianAdapter(adapter repositories.PhysicianRepository, cache providers.CacheProvider) repositories.PhysicianRepository {
	return &CachedPhysicianAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	physicianByIDTTL      = 300 // 5 minutes for single physician
	physicianListTTL      = 120 // 2 minutes for lists
	physicianSpecialtyTTL = 120 // 2 minutes for specialty selection lists
)

// Cache key generators
func physicianCacheKey(id string) string {
	return fmt.Sprintf("physician:%s", id)
}

func physicianListCacheKey() string {
	return "physicians:list"
}

func physicianSpecialtyCacheKey(specialtyID string) string {
	return fmt.Sprintf("physicians:specialty:%s", specialtyID)
}

// GetByID retrieves a physician by ID with caching
func (a *CachedPhysicianAdapter) GetByID(ctx context.Context, id string) (*entities.Physician, error) {
	cacheKey := physicianCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var physician entities.Physician
		if err := json.Unmarshal(cached, &physician); err == nil {
			return &physician, nil
		}
		log.Printf("Failed to unmarshal cached physician %s: %v", id, err)
	}

	physician, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(physician); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, physicianByIDTTL); err != nil {
				log.Printf("Failed to cache physician %s: %v", id, err)
			}
		}
	}()

	return physician, nil
}

// List retrieves all physicians with caching
func (a *CachedPhysicianAdapter) List(ctx context.Context) ([]*entities.Physician, error) {
	cacheKey := physicianListCacheKey()

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var physicians []*entities.Physician
		if err := json.Unmarshal(cached, &physicians); err == nil {
			return physicians, nil
		}
		log.Printf("Failed to unmarshal cached physician list: %v", err)
	}

	physicians, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(physicians); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, physicianListTTL); err != nil {
				log.Printf("Failed to cache physician list: %v", err)
			}
		}
	}()

	return physicians, nil
}

// ListActiveBySpecialty retrieves the scheduling selection list with caching.
// The cached slice preserves the adapter's ordering.
func (a *CachedPhysicianAdapter) ListActiveBySpecialty(ctx context.Context, specialtyID string) ([]*entities.Physician, error) {
	cacheKey := physicianSpecialtyCacheKey(specialtyID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var physicians []*entities.Physician
		if err := json.Unmarshal(cached, &physicians); err == nil {
			return physicians, nil
		}
		log.Printf("Failed to unmarshal cached specialty list %s: %v", specialtyID, err)
	}

	physicians, err := a.adapter.ListActiveBySpecialty(ctx, specialtyID)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(physicians); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, physicianSpecialtyTTL); err != nil {
				log.Printf("Failed to cache specialty list %s: %v", specialtyID, err)
			}
		}
	}()

	return physicians, nil
}

// Create creates a physician and invalidates related caches
func (a *CachedPhysicianAdapter) Create(ctx context.Context, physician *entities.Physician) error {
	if err := a.adapter.Create(ctx, physician); err != nil {
		return err
	}

	a.invalidate(physician.ID, physician.SpecialtyID)
	return nil
}

// Update updates a physician and invalidates its caches
func (a *CachedPhysicianAdapter) Update(ctx context.Context, physician *entities.Physician) error {
	if err := a.adapter.Update(ctx, physician); err != nil {
		return err
	}

	a.invalidate(physician.ID, physician.SpecialtyID)
	return nil
}

// Delete deletes a physician and invalidates its caches
func (a *CachedPhysicianAdapter) Delete(ctx context.Context, id string) error {
	// Resolve the specialty before the row disappears so its selection
	// list can be invalidated too.
	var specialtyID string
	if physician, err := a.adapter.GetByID(ctx, id); err == nil {
		specialtyID = physician.SpecialtyID
	}

	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}

	a.invalidate(id, specialtyID)
	return nil
}

// ExistsByID checks existence without caching
func (a *CachedPhysicianAdapter) ExistsByID(ctx context.Context, id string) (bool, error) {
	return a.adapter.ExistsByID(ctx, id)
}

func (a *CachedPhysicianAdapter) invalidate(id, specialtyID string) {
	go func() {
		bgCtx := context.Background()
		keys := []string{physicianCacheKey(id), physicianListCacheKey()}
		if specialtyID != "" {
			keys = append(keys, physicianSpecialtyCacheKey(specialtyID))
		}
		for _, key := range keys {
			if err := a.cache.Delete(bgCtx, key); err != nil {
				log.Printf("Failed to invalidate cache key %s: %v", key, err)
			}
		}
	}()
}
