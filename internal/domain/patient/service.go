package patient

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/medilab/lims/internal/platform/metrics"
)

// NameSyncer propagates a patient rename to records that hold a denormalized
// copy of the name. Implemented by the lab request repository.
type NameSyncer interface {
	SyncPatientName(ctx context.Context, patientID, name string) error
}

type Service struct {
	repo      Repository
	syncer    NameSyncer
	collector *metrics.Collector
	logger    zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetNameSyncer attaches the rename propagation hook. Wired after both
// domains are constructed to avoid a dependency cycle.
func (s *Service) SetNameSyncer(ns NameSyncer) {
	s.syncer = ns
}

// SetCollector attaches the optional metrics collector.
func (s *Service) SetCollector(c *metrics.Collector) {
	s.collector = c
}

// Upsert creates the patient when no id is supplied, otherwise updates the
// existing record in place. Returns whether a new patient was created.
func (s *Service) Upsert(ctx context.Context, p *Patient) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	if p.ID == "" {
		if err := s.repo.Create(ctx, p); err != nil {
			return false, fmt.Errorf("create patient: %w", err)
		}
		if s.collector != nil {
			s.collector.PatientsCreatedTotal.Inc()
		}
		s.logger.Info().Str("patient_id", p.ID).Msg("patient created")
		return true, nil
	}

	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return false, fmt.Errorf("update patient: %w", err)
	}

	if s.syncer != nil && existing.Name != p.Name {
		if err := s.syncer.SyncPatientName(ctx, p.ID, p.Name); err != nil {
			return false, fmt.Errorf("sync patient name: %w", err)
		}
	}
	return false, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Seed inserts the demo patients, skipping ones already present.
func (s *Service) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, p := range SeedPatients() {
		ok, err := s.repo.CreateWithID(ctx, p)
		if err != nil {
			return created, fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}
