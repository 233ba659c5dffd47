package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/legacyerp"
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrLegacyERPNotAvailable indicates the legacy ERP client is not available
var ErrLegacyERPNotAvailable = errors.New("legacy ERP not available")

// LegacyImportService imports historical ATOs recorded in the shipyard's
// legacy ERP before this platform existed. Imported amendments carry no
// workflow status and count toward contract totals like any other approved
// amendment. The importer is idempotent: amendments already present (matched
// by number) are skipped, and the per-contract sequence is seeded so new
// amendments continue numbering after the imported ones.
type LegacyImportService struct {
	erpClient     *legacyerp.Client
	contractRepo  *repository.ContractRepository
	amendmentRepo *repository.AmendmentRepository
	activityRepo  *repository.ActivityRepository
	numberSeq     *NumberSequenceService
	logger        *zap.Logger
}

func NewLegacyImportService(
	erpClient *legacyerp.Client,
	contractRepo *repository.ContractRepository,
	amendmentRepo *repository.AmendmentRepository,
	activityRepo *repository.ActivityRepository,
	numberSeq *NumberSequenceService,
	logger *zap.Logger,
) *LegacyImportService {
	return &LegacyImportService{
		erpClient:     erpClient,
		contractRepo:  contractRepo,
		amendmentRepo: amendmentRepo,
		activityRepo:  activityRepo,
		numberSeq:     numberSeq,
		logger:        logger,
	}
}

// legacyATOQuery pulls the historical ATO register for one contract. The
// legacy schema stores one row per approved ATO, keyed by contract number
// and sequence.
const legacyATOQuery = `
	SELECT ATO_SEQ, DESCRIPTION, PRICE, DELIVERY_DAYS, APPROVED_DATE
	FROM dbo.CONTRACT_ATO
	WHERE CONTRACT_NO = @p1
	ORDER BY ATO_SEQ`

// ImportContract imports the legacy ATO history for a single contract.
// Returns the number of amendments imported (already-present rows are
// skipped, not counted).
func (s *LegacyImportService) ImportContract(ctx context.Context, contractID uuid.UUID) (int, error) {
	if s.erpClient == nil || !s.erpClient.IsEnabled() {
		return 0, ErrLegacyERPNotAvailable
	}

	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to get contract: %w", err)
	}

	rows, err := s.erpClient.ExecuteQuery(ctx, legacyATOQuery, contract.Number)
	if err != nil {
		return 0, fmt.Errorf("failed to query legacy ERP for contract %s: %w", contract.Number, err)
	}

	imported := 0
	maxSeq := 0
	for _, row := range rows {
		seq := asInt(row["ATO_SEQ"])
		if seq <= 0 {
			s.logger.Warn("skipping legacy ATO with invalid sequence",
				zap.String("contract_number", contract.Number),
				zap.Any("raw_seq", row["ATO_SEQ"]))
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}

		number := fmt.Sprintf("%s-ATO-%03d", contract.Number, seq)
		if _, err := s.amendmentRepo.GetByNumber(ctx, number); err == nil {
			continue // already imported
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return imported, fmt.Errorf("failed to check existing amendment %s: %w", number, err)
		}

		approvedAt := asTime(row["APPROVED_DATE"])
		price := asFloat(row["PRICE"])
		amendment := &domain.Amendment{
			ContractID:         contract.ID,
			SequenceNumber:     seq,
			Number:             number,
			Title:              asString(row["DESCRIPTION"]),
			Status:             domain.AmendmentStatusApproved,
			WorkflowStatus:     nil, // predates the structured workflow
			PriceImpact:        price,
			DeliveryDaysImpact: asInt(row["DELIVERY_DAYS"]),
			CreatedByID:        "system",
			CreatedByName:      "Importação ERP",
			ApprovedAt:         approvedAt,
		}
		if err := s.amendmentRepo.Create(ctx, amendment); err != nil {
			s.logger.Error("failed to persist imported amendment",
				zap.Error(err),
				zap.String("number", number))
			return imported, fmt.Errorf("failed to create amendment %s: %w", number, err)
		}
		imported++

		s.logger.Info("imported legacy amendment",
			zap.String("number", number),
			zap.Float64("price_impact", price))
	}

	if maxSeq > 0 {
		if err := s.numberSeq.SeedAmendmentSequence(ctx, contract.Number, maxSeq); err != nil {
			return imported, fmt.Errorf("failed to seed amendment sequence for %s: %w", contract.Number, err)
		}
	}

	if imported > 0 {
		activity := &domain.Activity{
			TargetType:  domain.ActivityTargetContract,
			TargetID:    contract.ID,
			Title:       "Histórico importado",
			Body:        fmt.Sprintf("%d ATOs importados do ERP legado", imported),
			CreatorName: "Sistema",
			OccurredAt:  time.Now(),
		}
		if err := s.activityRepo.Create(ctx, activity); err != nil {
			s.logger.Warn("failed to log import activity",
				zap.Error(err),
				zap.String("contract_number", contract.Number))
		}
	}

	return imported, nil
}

// ImportAll runs the legacy import across every contract. Individual contract
// failures are logged and counted, not fatal to the run.
func (s *LegacyImportService) ImportAll(ctx context.Context) (imported int, failed int, err error) {
	if s.erpClient == nil || !s.erpClient.IsEnabled() {
		return 0, 0, ErrLegacyERPNotAvailable
	}

	page := 1
	const pageSize = 100
	for {
		contracts, total, err := s.contractRepo.List(ctx, page, pageSize, nil, nil)
		if err != nil {
			return imported, failed, fmt.Errorf("failed to list contracts: %w", err)
		}
		for _, contract := range contracts {
			n, err := s.ImportContract(ctx, contract.ID)
			if err != nil {
				s.logger.Warn("legacy import failed for contract",
					zap.Error(err),
					zap.String("contract_number", contract.Number))
				failed++
				continue
			}
			imported += n
		}
		if int64(page*pageSize) >= total {
			break
		}
		page++
	}

	s.logger.Info("completed legacy ERP import",
		zap.Int("imported", imported),
		zap.Int("failed", failed))

	return imported, failed, nil
}

// Legacy ERP values arrive via the generic row scanner as driver-dependent
// types, so coercion is defensive across the numeric representations MS SQL
// produces.

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case []byte:
		var f float64
		_, _ = fmt.Sscanf(string(t), "%f", &f)
		return f
	default:
		return 0
	}
}

func asInt(v interface{}) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	default:
		return 0
	}
}

func asTime(v interface{}) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}
