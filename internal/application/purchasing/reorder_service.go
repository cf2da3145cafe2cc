package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/purchasing"
	"github.com/retailpos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReorderCache caches the generated reorder report for a short window.
// Implementations must treat misses and backend failures the same way:
// return ok=false and let the caller regenerate.
type ReorderCache interface {
	Get(ctx context.Context) (*ReorderReportResponse, bool)
	Set(ctx context.Context, report *ReorderReportResponse)
	Invalidate(ctx context.Context)
}

// ReorderService generates replenishment suggestions. The report is
// advisory: it never creates orders or mutates stock.
type ReorderService struct {
	productRepo catalog.Repository
	vendorRepo  partner.Repository
	orderRepo   purchasing.Repository
	cache       ReorderCache
	logger      *zap.Logger
	metrics     *telemetry.BusinessMetrics
}

// NewReorderService creates a new ReorderService
func NewReorderService(productRepo catalog.Repository, vendorRepo partner.Repository, orderRepo purchasing.Repository, cache ReorderCache, logger *zap.Logger) *ReorderService {
	return &ReorderService{
		productRepo: productRepo,
		vendorRepo:  vendorRepo,
		orderRepo:   orderRepo,
		cache:       cache,
		logger:      logger,
	}
}

// SetBusinessMetrics attaches business metrics recording. Optional.
func (s *ReorderService) SetBusinessMetrics(m *telemetry.BusinessMetrics) {
	s.metrics = m
}

// GenerateReport builds the reorder suggestion report, grouped by vendor.
// Products without an assigned vendor or with an inactive vendor are
// skipped. Set fresh to bypass the cache.
func (s *ReorderService) GenerateReport(ctx context.Context, fresh bool) (*ReorderReportResponse, error) {
	if !fresh && s.cache != nil {
		if report, ok := s.cache.Get(ctx); ok {
			return report, nil
		}
	}

	products, err := s.productRepo.FindBelowReorderLevel(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]*catalog.Product, 0, len(products))
	productIDs := make([]uuid.UUID, 0, len(products))
	vendorIDSet := make(map[uuid.UUID]bool)
	for _, p := range products {
		if !p.NeedsReorder() || p.VendorID == nil {
			continue
		}
		candidates = append(candidates, p)
		productIDs = append(productIDs, p.ID)
		vendorIDSet[*p.VendorID] = true
	}

	vendorIDs := make([]uuid.UUID, 0, len(vendorIDSet))
	for id := range vendorIDSet {
		vendorIDs = append(vendorIDs, id)
	}
	vendors, err := s.vendorRepo.FindByIDs(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}
	vendorNames := make(map[uuid.UUID]string, len(vendors))
	for _, v := range vendors {
		if v.IsActive {
			vendorNames[v.ID] = v.Name
		}
	}

	lastCosts, err := s.orderRepo.LastUnitCostByProduct(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	byVendor := make(map[uuid.UUID][]purchasing.ReorderSuggestion)
	skipped := 0
	for _, p := range candidates {
		if _, ok := vendorNames[*p.VendorID]; !ok {
			skipped++
			continue
		}

		cost := resolveUnitCost(p, lastCosts)
		suggestion := purchasing.NewReorderSuggestion(
			p.ID, p.SKU, p.Name,
			p.QuantityInStock, p.ReorderLevel, p.ReorderQuantity,
			cost,
		)
		byVendor[*p.VendorID] = append(byVendor[*p.VendorID], suggestion)
	}

	groups := purchasing.BuildVendorGroups(byVendor, vendorNames)

	total := decimal.Zero
	productCount := 0
	for _, g := range groups {
		total = total.Add(g.EstimatedTotal)
		productCount += g.ItemCount
	}

	report := &ReorderReportResponse{
		Groups:         groups,
		VendorCount:    len(groups),
		ProductCount:   productCount,
		EstimatedTotal: total,
		GeneratedAt:    time.Now(),
	}

	s.logger.Info("reorder report generated",
		zap.Int("vendors", report.VendorCount),
		zap.Int("products", report.ProductCount),
		zap.Int("skipped_inactive_vendor", skipped),
	)

	if s.metrics != nil {
		s.metrics.RecordReorderCandidates(ctx, int64(report.ProductCount))
	}

	if s.cache != nil {
		s.cache.Set(ctx, report)
	}

	return report, nil
}

// InvalidateCache drops the cached report, forcing the next call to
// regenerate. Called after receiving changes stock levels.
func (s *ReorderService) InvalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// resolveUnitCost prefers the last purchased cost, then the catalog
// default, and reports nil (estimated as zero) when neither exists.
func resolveUnitCost(p *catalog.Product, lastCosts map[uuid.UUID]decimal.Decimal) *decimal.Decimal {
	if cost, ok := lastCosts[p.ID]; ok {
		return &cost
	}
	if p.DefaultUnitCost != nil {
		return p.DefaultUnitCost
	}
	return nil
}
