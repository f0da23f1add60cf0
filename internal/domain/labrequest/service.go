package labrequest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medilab/lims/internal/domain/billing"
	"github.com/medilab/lims/internal/domain/catalog"
	"github.com/medilab/lims/internal/domain/patient"
	"github.com/medilab/lims/internal/platform/ai"
	"github.com/medilab/lims/internal/platform/metrics"
)

// PatientDirectory is the slice of the patient repository the lifecycle
// needs. Satisfied by patient.Repository.
type PatientDirectory interface {
	GetByID(ctx context.Context, id string) (*patient.Patient, error)
}

type Service struct {
	repo        Repository
	patients    PatientDirectory
	catalog     *catalog.Store
	interpreter ai.Interpreter
	collector   *metrics.Collector
	logger      zerolog.Logger
}

func NewService(repo Repository, patients PatientDirectory, store *catalog.Store, interpreter ai.Interpreter, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		patients:    patients,
		catalog:     store,
		interpreter: interpreter,
		logger:      logger,
	}
}

// SetCollector attaches the optional metrics collector.
func (s *Service) SetCollector(c *metrics.Collector) {
	s.collector = c
}

// Create registers a new lab request. The patient must exist and at least
// one known test must be selected. Payment figures are recomputed
// server-side; the total defaults to the catalog price sum when the caller
// leaves it zero.
func (s *Service) Create(ctx context.Context, patientID string, testIDs []string, payment billing.PaymentDetails, referredBy string) (*LabRequest, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if len(testIDs) == 0 {
		return nil, &ValidationError{Fields: []string{"at least one test is required"}}
	}
	var tests []*catalog.LabTest
	seen := make(map[string]bool)
	var unique []string
	for _, id := range testIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		t, ok := s.catalog.TestByID(id)
		if !ok {
			return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown test: %s", id)}}
		}
		tests = append(tests, t)
		unique = append(unique, id)
	}

	if payment.TotalAmount == 0 {
		payment.TotalAmount = billing.ComputeTotal(tests)
	}
	billing.Recalculate(&payment)

	lr := &LabRequest{
		PatientID:   p.ID,
		PatientName: p.Name,
		TestIDs:     unique,
		Status:      StatusRegistered,
		Results:     map[string][]TestResult{},
		Payment:     payment,
		ReferredBy:  referredBy,
	}
	if err := s.repo.Create(ctx, lr); err != nil {
		return nil, fmt.Errorf("create lab request: %w", err)
	}
	s.logger.Info().Str("lab_no", lr.LabNo).Str("patient_id", p.ID).Msg("lab request registered")
	return lr, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*LabRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*LabRequest, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabRequest, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) GetStatusHistory(ctx context.Context, id uuid.UUID) ([]*StatusHistory, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetStatusHistory(ctx, id)
}

// CollectSamples records phlebotomy for a registered request. The supplied
// sample set must be a subset of the samples the ordered tests require;
// when any required sample is missing, a comment explaining it is
// mandatory. Advances to COLLECTED.
func (s *Service) CollectSamples(ctx context.Context, id uuid.UUID, sampleIDs []string, comments string) (*LabRequest, error) {
	lr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lr.Status != StatusRegistered {
		return nil, &InvalidTransitionError{From: lr.Status, To: StatusCollected}
	}

	required := s.requiredSamples(lr)
	collected := make(map[string]bool)
	for _, id := range sampleIDs {
		if !required[id] {
			return nil, &ValidationError{Fields: []string{fmt.Sprintf("sample %s is not required by this request", id)}}
		}
		collected[id] = true
	}

	var missing []string
	for id := range required {
		if !collected[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 && strings.TrimSpace(comments) == "" {
		return nil, &ValidationError{Fields: []string{
			fmt.Sprintf("missing samples (%s) require phlebotomy comments", strings.Join(missing, ", ")),
		}}
	}

	lr.CollectedSamples = sortedKeys(collected)
	lr.PhlebotomyComments = comments
	if err := s.transition(ctx, lr, StatusCollected); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, lr); err != nil {
		return nil, err
	}
	return lr, nil
}

// UpdateResults upserts the result list for one test. Allowed in COLLECTED
// and ANALYZED; the first entry advances COLLECTED to ANALYZED.
func (s *Service) UpdateResults(ctx context.Context, id uuid.UUID, testID string, results []TestResult) (*LabRequest, error) {
	lr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lr.Status != StatusCollected && lr.Status != StatusAnalyzed {
		return nil, &InvalidTransitionError{From: lr.Status, To: StatusAnalyzed}
	}

	test, verr := s.resultTest(lr, testID)
	if verr != nil {
		return nil, verr
	}
	normalized, verr := s.normalizeResults(test, results)
	if verr != nil {
		return nil, verr
	}

	lr.Results[testID] = normalized
	if lr.Status == StatusCollected {
		if err := s.transition(ctx, lr, StatusAnalyzed); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, lr); err != nil {
		return nil, err
	}
	return lr, nil
}

// UpdateAllResults replaces the whole results mapping. Allowed in any
// state before verification and never advances the status; repeated calls
// with the same payload are idempotent.
func (s *Service) UpdateAllResults(ctx context.Context, id uuid.UUID, resultsMap map[string][]TestResult) (*LabRequest, error) {
	lr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lr.Status == StatusVerified {
		return nil, &InvalidTransitionError{From: lr.Status, To: lr.Status}
	}

	replacement := make(map[string][]TestResult, len(resultsMap))
	for testID, results := range resultsMap {
		if !lr.HasTest(testID) {
			return nil, &ValidationError{Fields: []string{fmt.Sprintf("test %s is not part of this request", testID)}}
		}
		test, ok := s.catalog.TestByID(testID)
		if !ok {
			return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown test: %s", testID)}}
		}
		normalized, verr := s.normalizeResults(test, results)
		if verr != nil {
			return nil, verr
		}
		replacement[testID] = normalized
	}

	lr.Results = replacement
	if err := s.repo.Update(ctx, lr); err != nil {
		return nil, err
	}
	return lr, nil
}

// Verify finalizes an analyzed request. Every parameter of every test whose
// sample was collected must carry a non-empty value; tests whose sample was
// never collected are outside the reportable set and are not checked.
// VERIFIED is terminal and freezes the clinical content.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, resultsMap map[string][]TestResult) (*LabRequest, error) {
	lr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(lr.Status, StatusVerified); err != nil {
		return nil, err
	}

	replacement := make(map[string][]TestResult, len(resultsMap))
	for testID, results := range resultsMap {
		if !lr.HasTest(testID) {
			return nil, &ValidationError{Fields: []string{fmt.Sprintf("test %s is not part of this request", testID)}}
		}
		test, ok := s.catalog.TestByID(testID)
		if !ok {
			return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown test: %s", testID)}}
		}
		normalized, verr := s.normalizeResults(test, results)
		if verr != nil {
			return nil, verr
		}
		replacement[testID] = normalized
	}

	for _, testID := range lr.TestIDs {
		test, ok := s.catalog.TestByID(testID)
		if !ok || !lr.SampleCollected(test.SampleTypeID) {
			continue
		}
		entered := make(map[string]string)
		for _, res := range replacement[testID] {
			entered[res.ParameterID] = res.Value
		}
		for _, param := range test.Parameters {
			if strings.TrimSpace(entered[param.ID]) == "" {
				return nil, &ValidationError{Fields: []string{
					fmt.Sprintf("test %s is missing a value for %s", testID, param.ID),
				}}
			}
		}
	}

	lr.Results = replacement
	if err := s.transition(ctx, lr, StatusVerified); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, lr); err != nil {
		return nil, err
	}
	s.logger.Info().Str("lab_no", lr.LabNo).Msg("lab request verified")
	return lr, nil
}

// UpdateComment sets the request comments. Rejected once verified.
func (s *Service) UpdateComment(ctx context.Context, id uuid.UUID, comment string) (*LabRequest, error) {
	lr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lr.Status == StatusVerified {
		return nil, &InvalidTransitionError{From: lr.Status, To: lr.Status}
	}
	lr.Comments = comment
	if err := s.repo.Update(ctx, lr); err != nil {
		return nil, err
	}
	return lr, nil
}

// Interpret asks the AI client for a commentary over the reportable results
// and stores whatever comes back. Allowed in any state, including after
// verification; AI failures degrade to a fixed message and never fail the
// call.
func (s *Service) Interpret(ctx context.Context, id uuid.UUID) (*LabRequest, error) {
	lr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in := s.buildInterpretationInput(ctx, lr)
	text := ai.MsgNoResults
	if len(in.Tests) > 0 {
		text = s.interpreter.Interpret(ctx, in)
	}

	if s.collector != nil {
		s.collector.InterpretationsTotal.WithLabelValues(interpretationOutcome(text)).Inc()
	}

	// Narrow write: the model call can be slow, and a concurrent result
	// entry in the meantime must neither be clobbered nor fail this save.
	if err := s.repo.SetAIInterpretation(ctx, lr.ID, text); err != nil {
		return nil, err
	}
	lr.AIInterpretation = text
	return lr, nil
}

func interpretationOutcome(text string) string {
	switch text {
	case ai.MsgNotConfigured:
		return "not_configured"
	case ai.MsgFailure:
		return "failed"
	case ai.MsgNoResults:
		return "no_results"
	}
	return "ok"
}

// buildInterpretationInput collects the reportable tests: sample collected
// and at least one non-empty value entered.
func (s *Service) buildInterpretationInput(ctx context.Context, lr *LabRequest) ai.Input {
	in := ai.Input{Patient: ai.PatientInfo{Name: lr.PatientName}}
	if p, err := s.patients.GetByID(ctx, lr.PatientID); err == nil {
		in.Patient = ai.PatientInfo{Name: p.Name, Age: p.Age, Gender: p.Gender}
	}

	for _, testID := range lr.TestIDs {
		test, ok := s.catalog.TestByID(testID)
		if !ok || !lr.SampleCollected(test.SampleTypeID) {
			continue
		}
		var lines []ai.ResultLine
		for _, res := range lr.Results[testID] {
			if strings.TrimSpace(res.Value) == "" {
				continue
			}
			param, ok := test.ParameterByID(res.ParameterID)
			if !ok {
				continue
			}
			lines = append(lines, ai.ResultLine{
				Name:           param.Name,
				Value:          res.Value,
				Unit:           param.Unit,
				ReferenceRange: param.ReferenceRange,
				Flag:           res.Flag,
			})
		}
		if len(lines) > 0 {
			in.Tests = append(in.Tests, ai.TestSection{TestName: test.Name, Results: lines})
		}
	}
	return in
}

// transition validates and applies a status change, recording it in the
// history table and the transition counter.
func (s *Service) transition(ctx context.Context, lr *LabRequest, to Status) error {
	if err := ValidateTransition(lr.Status, to); err != nil {
		return err
	}
	from := lr.Status
	lr.Status = to
	if err := s.repo.AddStatusHistory(ctx, &StatusHistory{
		RequestID:  lr.ID,
		FromStatus: from,
		ToStatus:   to,
	}); err != nil {
		return fmt.Errorf("record status history: %w", err)
	}
	if s.collector != nil {
		s.collector.TransitionsTotal.WithLabelValues(string(to)).Inc()
	}
	return nil
}

// resultTest checks that the test belongs to the request and its sample was
// collected, returning the catalog entry.
func (s *Service) resultTest(lr *LabRequest, testID string) (*catalog.LabTest, *ValidationError) {
	if !lr.HasTest(testID) {
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("test %s is not part of this request", testID)}}
	}
	test, ok := s.catalog.TestByID(testID)
	if !ok {
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown test: %s", testID)}}
	}
	if !lr.SampleCollected(test.SampleTypeID) {
		return nil, &ValidationError{Fields: []string{
			fmt.Sprintf("sample %s for test %s was not collected", test.SampleTypeID, testID),
		}}
	}
	return test, nil
}

// normalizeResults validates parameter membership and computes flags.
func (s *Service) normalizeResults(test *catalog.LabTest, results []TestResult) ([]TestResult, *ValidationError) {
	normalized := make([]TestResult, 0, len(results))
	for _, res := range results {
		param, ok := test.ParameterByID(res.ParameterID)
		if !ok {
			return nil, &ValidationError{Fields: []string{
				fmt.Sprintf("parameter %s does not belong to test %s", res.ParameterID, test.ID),
			}}
		}
		res.Flag = ComputeFlag(res.Value, param.ReferenceRange)
		normalized = append(normalized, res)
	}
	return normalized, nil
}

// requiredSamples is the set of sample types the ordered tests need.
func (s *Service) requiredSamples(lr *LabRequest) map[string]bool {
	required := make(map[string]bool)
	for _, testID := range lr.TestIDs {
		if test, ok := s.catalog.TestByID(testID); ok {
			required[test.SampleTypeID] = true
		}
	}
	return required
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
