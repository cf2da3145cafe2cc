package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BusinessMetrics is constructed without a meter.
var ErrMeterNil = errors.New("telemetry: meter must not be nil")

// BusinessMetrics tracks purchasing activity: purchase order creation,
// order amounts, goods receipts, and reorder pressure.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	orderCreatedTotal *Counter
	orderAmount       *Histogram
	receiptLinesTotal *Counter
	lowStockCount     *Gauge
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  meter,
		logger: logger,
	}

	var err error

	bm.orderCreatedTotal, err = NewCounter(
		meter,
		"pos_purchase_order_created_total",
		"Total number of purchase orders created",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmount, err = NewHistogram(
		meter,
		"pos_purchase_order_amount",
		"Distribution of purchase order totals",
		"{usd}",
	)
	if err != nil {
		return nil, err
	}

	bm.receiptLinesTotal, err = NewCounter(
		meter,
		"pos_goods_receipt_lines_total",
		"Total number of receiving lines posted",
		"{lines}",
	)
	if err != nil {
		return nil, err
	}

	bm.lowStockCount, err = NewGauge(
		meter,
		"pos_reorder_candidate_count",
		"Number of products at or below their reorder level",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordOrderCreated records a purchase order creation with its total amount.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, amount decimal.Decimal) {
	bm.orderCreatedTotal.Inc(ctx)
	bm.orderAmount.Record(ctx, amount.InexactFloat64())
}

// RecordGoodsReceipt records the number of lines posted in one receiving batch.
func (bm *BusinessMetrics) RecordGoodsReceipt(ctx context.Context, lines int) {
	bm.receiptLinesTotal.Add(ctx, int64(lines))
}

// RecordReorderCandidates records the current reorder candidate count.
// Updated each time the reorder report is regenerated.
func (bm *BusinessMetrics) RecordReorderCandidates(ctx context.Context, count int64) {
	bm.lowStockCount.Record(ctx, count)
}
