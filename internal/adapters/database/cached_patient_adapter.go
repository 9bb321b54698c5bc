package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/rs/zerolog/log"
)

// CachedPatientAdapter wraps a PatientRepository with read caching. Writes
// pass through and invalidate the cached entry.
type CachedPatientAdapter struct {
	adapter repositories.PatientRepository
	cache   providers.CacheProvider
}

// NewCachedPatientAdapter creates a new cached patient adapter
func NewCachedPatientAdapter(adapter repositories.PatientRepository, cache providers.CacheProvider) repositories.PatientRepository {
	return &CachedPatientAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTL (in seconds)
const patientByIDTTL = 300

func patientCacheKey(id string) string {
	return fmt.Sprintf("patient:%s", id)
}

// Create creates a patient, passing through the cache
func (a *CachedPatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	return a.adapter.Create(ctx, patient)
}

// GetByID retrieves a patient by ID with caching
func (a *CachedPatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	cacheKey := patientCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var patient entities.Patient
		if err := json.Unmarshal(cached, &patient); err == nil {
			return &patient, nil
		}
		log.Warn().Str("patient_id", id).Msg("Failed to unmarshal cached patient")
	}

	patient, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(patient); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, patientByIDTTL); err != nil {
				log.Warn().Str("patient_id", id).Err(err).Msg("Failed to cache patient")
			}
		}
	}()

	return patient, nil
}

// List retrieves patients without caching; the roster changes often and the
// smart search always wants fresh rows.
func (a *CachedPatientAdapter) List(ctx context.Context, clinicID string) ([]*entities.Patient, error) {
	return a.adapter.List(ctx, clinicID)
}

// Update updates a patient and invalidates the cached entry
func (a *CachedPatientAdapter) Update(ctx context.Context, patient *entities.Patient) error {
	if err := a.adapter.Update(ctx, patient); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, patientCacheKey(patient.ID)); err != nil {
		log.Warn().Str("patient_id", patient.ID).Err(err).Msg("Failed to invalidate cached patient")
	}
	return nil
}

// Delete deletes a patient and invalidates the cached entry
func (a *CachedPatientAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, patientCacheKey(id)); err != nil {
		log.Warn().Str("patient_id", id).Err(err).Msg("Failed to invalidate cached patient")
	}
	return nil
}
