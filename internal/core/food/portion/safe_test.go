package portion

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-resolver/internal/pkg/common"
)

type stubFlags struct {
	enabled bool
	err     error
}

func (s stubFlags) PortionDetectionEnabled(ctx context.Context) (bool, error) {
	return s.enabled, s.err
}

type stubPrefs struct {
	pref  *common.PortionPreference
	err   error
	delay time.Duration
}

func (s stubPrefs) Get(ctx context.Context, productKey string) (*common.PortionPreference, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.pref, s.err
}

func TestDetectPortionSafe_FlagDisabled(t *testing.T) {
	d := NewDetector(stubFlags{enabled: false}, nil, 0)

	result := d.DetectPortionSafe(context.Background(), common.ProductData{Name: "pizza"}, "", "manual")

	assert.Equal(t, SafeFallback, result)
}

func TestDetectPortionSafe_FlagErrorMeansDisabled(t *testing.T) {
	d := NewDetector(stubFlags{err: errors.New("flag service down")}, nil, 0)

	result := d.DetectPortionSafe(context.Background(), common.ProductData{Name: "pizza"}, "", "manual")

	assert.Equal(t, SafeFallback, result)
}

func TestDetectPortionSafe_NilFlagCheckerMeansEnabled(t *testing.T) {
	d := NewDetector(nil, nil, 0)

	result := d.DetectPortionSafe(context.Background(), common.ProductData{ServingGrams: 50}, "", "manual")

	assert.Equal(t, 50.0, result.Grams)
	assert.Equal(t, common.PortionSourceDBDeclared, result.Source)
}

func TestDetectPortionSafe_UsesPreference(t *testing.T) {
	pref := &common.PortionPreference{ProductKey: "barcode:123", PortionGrams: 60, PortionDisplay: "1 bag"}
	d := NewDetector(stubFlags{enabled: true}, stubPrefs{pref: pref}, time.Second)

	result := d.DetectPortionSafe(context.Background(), common.ProductData{Barcode: "123", Name: "Chips"}, "", "barcode")

	assert.Equal(t, 60.0, result.Grams)
	assert.Equal(t, common.PortionSourceUserSet, result.Source)
	assert.Equal(t, "1 bag", result.Display)
}

func TestDetectPortionSafe_PreferenceTimeout(t *testing.T) {
	pref := &common.PortionPreference{ProductKey: "barcode:123", PortionGrams: 60}
	slow := stubPrefs{pref: pref, delay: 500 * time.Millisecond}
	d := NewDetector(stubFlags{enabled: true}, slow, 20*time.Millisecond)

	start := time.Now()
	result := d.DetectPortionSafe(context.Background(), common.ProductData{Barcode: "123", ServingGrams: 50}, "", "barcode")

	// 逾時後繼續走計算器，不等慢速存放
	assert.Less(t, time.Since(start), 300*time.Millisecond)
	assert.Equal(t, 50.0, result.Grams)
	assert.Equal(t, common.PortionSourceDBDeclared, result.Source)
}

func TestDetectPortionSafe_PreferenceErrorIgnored(t *testing.T) {
	d := NewDetector(stubFlags{enabled: true}, stubPrefs{err: errors.New("redis down")}, time.Second)

	result := d.DetectPortionSafe(context.Background(), common.ProductData{ServingGrams: 50}, "", "manual")

	assert.Equal(t, 50.0, result.Grams)
	assert.Equal(t, common.PortionSourceDBDeclared, result.Source)
}

func TestDetectPortionSafe_ClampHigh(t *testing.T) {
	d := NewDetector(nil, nil, 0)

	result := d.DetectPortionSafe(context.Background(), common.ProductData{Name: "burrito"}, "", "manual")

	// burrito 300g 超過上限 → 夾到 250 並標記為估計值
	assert.Equal(t, 250.0, result.Grams)
	assert.True(t, result.IsEstimated)
	assert.Equal(t, "250g", result.Display)
}

func TestDetectPortionSafe_ClampLow(t *testing.T) {
	d := NewDetector(nil, nil, 0)
	pref := &common.PortionPreference{ProductKey: "x", PortionGrams: 2}

	result := d.DetectPortionSafe(context.Background(), common.ProductData{Name: "gum"}, "", "manual")
	assert.GreaterOrEqual(t, result.Grams, 5.0)

	d = NewDetector(nil, stubPrefs{pref: pref}, time.Second)
	result = d.DetectPortionSafe(context.Background(), common.ProductData{Name: "gum"}, "", "manual")
	assert.GreaterOrEqual(t, result.Grams, 5.0)
	assert.LessOrEqual(t, result.Grams, 250.0)
}

func TestDetectPortionSafe_BoundsInvariant(t *testing.T) {
	d := NewDetector(nil, nil, 0)
	products := []common.ProductData{
		{},
		{Name: "burrito"},
		{Name: "egg"},
		{ServingGrams: 9999},
		{ServingGrams: math.Inf(1)},
		{Name: "pizza", ServingGrams: -3},
	}
	for _, p := range products {
		result := d.DetectPortionSafe(context.Background(), p, "", "manual")
		assert.GreaterOrEqual(t, result.Grams, 5.0, "product %+v", p)
		assert.LessOrEqual(t, result.Grams, 250.0, "product %+v", p)
		assert.False(t, math.IsNaN(result.Grams))
	}
}

func TestDetectPortionSafe_InfinityFallsBack(t *testing.T) {
	d := NewDetector(nil, nil, 0)

	result := d.DetectPortionSafe(context.Background(), common.ProductData{ServingGrams: math.Inf(1)}, "", "manual")

	assert.Equal(t, SafeFallback, result)
}

func TestSafeFallbackShape(t *testing.T) {
	require.Equal(t, 30.0, SafeFallback.Grams)
	assert.Equal(t, common.PortionSourceFallback, SafeFallback.Source)
	assert.Equal(t, 0.0, SafeFallback.Confidence)
	assert.True(t, SafeFallback.IsEstimated)
	assert.Equal(t, "30g", SafeFallback.Display)
}
