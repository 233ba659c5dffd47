package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oceanis-yachts/sales-api/internal/repository"
	"go.uber.org/zap"
)

// Sequence scopes. Quotations and contracts number per year, amendments
// number per contract so every ATO reads ATO-{contract}-{NNN}.
const (
	scopeQuotation = "quotation"
	scopeContract  = "contract"
	scopeAmendment = "amendment"
)

// NumberSequenceService handles generation of unique, formatted numbers for
// quotations, contracts and amendments.
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateQuotationNumber generates a unique quotation number.
// Format: COT-YYYY-NNN e.g., "COT-2026-014"
func (s *NumberSequenceService) GenerateQuotationNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	next, err := s.repo.GetNextNumber(ctx, scopeQuotation, strconv.Itoa(year))
	if err != nil {
		s.logger.Error("failed to get next quotation sequence",
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate quotation number: %w", err)
	}

	number := fmt.Sprintf("COT-%d-%03d", year, next)

	s.logger.Info("generated number",
		zap.String("number", number),
		zap.Int("sequence", next))

	return number, nil
}

// GenerateContractNumber generates a unique contract number.
// Format: CT-YYYY-NNN e.g., "CT-2026-003"
func (s *NumberSequenceService) GenerateContractNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	next, err := s.repo.GetNextNumber(ctx, scopeContract, strconv.Itoa(year))
	if err != nil {
		s.logger.Error("failed to get next contract sequence",
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate contract number: %w", err)
	}

	number := fmt.Sprintf("CT-%d-%03d", year, next)

	s.logger.Info("generated number",
		zap.String("number", number),
		zap.Int("sequence", next))

	return number, nil
}

// NextAmendmentNumber draws the next per-contract ATO sequence atomically
// and returns both the sequence and the formatted display number.
// Format: ATO-{contractNumber}-NNN e.g., "ATO-CT-2026-003-002"
func (s *NumberSequenceService) NextAmendmentNumber(ctx context.Context, contractNumber string) (int, string, error) {
	next, err := s.repo.GetNextNumber(ctx, scopeAmendment, contractNumber)
	if err != nil {
		s.logger.Error("failed to get next amendment sequence",
			zap.String("contractNumber", contractNumber),
			zap.Error(err))
		return 0, "", fmt.Errorf("failed to generate amendment number: %w", err)
	}

	number := fmt.Sprintf("ATO-%s-%03d", contractNumber, next)

	s.logger.Info("generated number",
		zap.String("number", number),
		zap.String("contractNumber", contractNumber),
		zap.Int("sequence", next))

	return next, number, nil
}

// SeedAmendmentSequence sets the per-contract counter to the last used
// sequence. Called after a legacy import so new ATOs continue after the
// highest imported number. Never lowers the counter.
func (s *NumberSequenceService) SeedAmendmentSequence(ctx context.Context, contractNumber string, lastUsed int) error {
	return s.repo.SetNumber(ctx, scopeAmendment, contractNumber, lastUsed)
}

// GetCurrentAmendmentSequence returns the current per-contract counter
// without incrementing it. Returns 0 if no sequence exists.
func (s *NumberSequenceService) GetCurrentAmendmentSequence(ctx context.Context, contractNumber string) (int, error) {
	return s.repo.GetCurrentNumber(ctx, scopeAmendment, contractNumber)
}
