// Package managers contains the per-category data managers: each owns the
// canonical in-memory and on-disk representation of one synchronized data
// category, plus the session manager and the checksum store the orchestrator
// consults.
package managers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lifeisskill/lisk-go/internal/models"
	"github.com/lifeisskill/lisk-go/internal/repositories/metadata"
)

// LoadCheckSums reads the checksum singleton row through the given
// repository handle (which may be transaction-bound). Returns (nil, nil)
// when no record exists yet.
func LoadCheckSums(ctx context.Context, repo metadata.Repository) (*models.CheckSumRecord, error) {
	raw, err := repo.Get(ctx, metadata.KeyCheckSums)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var rec models.CheckSumRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode checksum record: %w", err)
	}
	return &rec, nil
}

// SaveCheckSums writes the checksum singleton row.
func SaveCheckSums(ctx context.Context, repo metadata.Repository, rec *models.CheckSumRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode checksum record: %w", err)
	}
	return repo.Set(ctx, metadata.KeyCheckSums, raw)
}

// UpdateCheckSum sets one category's checksum, creating the record on first
// use. Managers call this inside the same transaction that replaces the
// category payload, so the checksum can never claim data that is absent.
func UpdateCheckSum(ctx context.Context, repo metadata.Repository, category models.Category, sum string) error {
	rec, err := LoadCheckSums(ctx, repo)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &models.CheckSumRecord{}
	}
	rec.Set(category, sum)
	return SaveCheckSums(ctx, repo, rec)
}

// CheckSumStore is the thin typed accessor over the checksum singleton row.
// It holds no business logic; the orchestrator alone interprets the values.
type CheckSumStore struct {
	repo metadata.Repository
}

func NewCheckSumStore(repo metadata.Repository) *CheckSumStore {
	return &CheckSumStore{repo: repo}
}

// Get returns the stored record, or (nil, nil) before the first sync.
func (s *CheckSumStore) Get(ctx context.Context) (*models.CheckSumRecord, error) {
	return LoadCheckSums(ctx, s.repo)
}

// Set overwrites the stored record.
func (s *CheckSumStore) Set(ctx context.Context, rec *models.CheckSumRecord) error {
	return SaveCheckSums(ctx, s.repo, rec)
}

// ClearUserData resets the user-bound checksum fields, keeping the
// generic-points checksum so shared map data is not re-fetched after an
// ordinary logout.
func (s *CheckSumStore) ClearUserData(ctx context.Context) error {
	rec, err := LoadCheckSums(ctx, s.repo)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	rec.ClearUserData()
	return SaveCheckSums(ctx, s.repo, rec)
}
