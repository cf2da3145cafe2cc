package telemetry_test

import (
	"context"
	"testing"

	"github.com/retailpos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(meter, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(nil, zap.NewNop())

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestBusinessMetrics_Record(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(meter, nil)
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic against the no-op meter
	bm.RecordOrderCreated(ctx, decimal.RequireFromString("125.40"))
	bm.RecordGoodsReceipt(ctx, 3)
	bm.RecordReorderCandidates(ctx, 7)
}
