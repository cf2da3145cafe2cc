package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/purchasing"
	"github.com/retailpos/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReceivingService applies receiving batches to purchase orders.
// Each batch is all-or-nothing: the order update, the stock deltas and
// the movement audit records commit in one database transaction, or
// none of them do.
type ReceivingService struct {
	txScope TransactionScope
	logger  *zap.Logger
	metrics *telemetry.BusinessMetrics
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(txScope TransactionScope, logger *zap.Logger) *ReceivingService {
	return &ReceivingService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ReceivingService) SetBusinessMetrics(m *telemetry.BusinessMetrics) {
	s.metrics = m
}

// Receive applies a receiving batch to the given purchase order.
func (s *ReceivingService) Receive(ctx context.Context, orderID uuid.UUID, req ReceiveGoodsRequest) (*ReceiveGoodsResponse, error) {
	lines := make([]purchasing.ReceiveLine, 0, len(req.Lines))
	for _, in := range req.Lines {
		lines = append(lines, purchasing.ReceiveLine{
			ItemID:        in.ItemID,
			QuantityDelta: in.Quantity,
			Notes:         in.Notes,
		})
	}

	var (
		order    *purchasing.PurchaseOrder
		received []purchasing.ReceivedItem
	)
	err := s.txScope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		expectedVersion := order.Version

		received, err = order.Receive(lines)
		if err != nil {
			return err
		}

		for _, line := range received {
			if err := repos.Stock.ApplyDelta(ctx, line.ProductID, line.QuantityDelta); err != nil {
				return err
			}
			movement, err := inventory.NewPurchaseReceiptMovement(line.ProductID, order.ID, line.QuantityDelta, line.UnitCost, req.ReceivedBy)
			if err != nil {
				return err
			}
			if err := repos.Movements.Record(ctx, movement); err != nil {
				return err
			}
		}

		return repos.Orders.SaveWithLock(ctx, order, expectedVersion)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("goods received",
		zap.String("po_number", order.PONumber),
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
		zap.Int("lines", len(received)),
		zap.Int64("pending_quantity", order.TotalPendingQuantity()),
	)

	if s.metrics != nil {
		s.metrics.RecordGoodsReceipt(ctx, len(received))
	}

	results := make([]ReceivedLineResult, 0, len(received))
	for _, line := range received {
		item := order.GetItem(line.ItemID)
		results = append(results, ReceivedLineResult{
			ItemID:      line.ItemID,
			ProductID:   line.ProductID,
			SKU:         line.SKU,
			Quantity:    line.QuantityDelta,
			NewPending:  item.QuantityPending(),
			FullyFilled: item.IsFullyReceived(),
		})
	}

	return &ReceiveGoodsResponse{
		Order:    ToPurchaseOrderResponse(order),
		Received: results,
	}, nil
}
