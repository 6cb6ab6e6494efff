package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashcart/insights/internal/analytics"
)

func setupTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	redisClient := &RedisClient{
		client: client,
		ctx:    context.Background(),
	}

	return redisClient, mr
}

func TestReportCache(t *testing.T) {
	rc, mr := setupTestRedis(t)
	defer rc.Close()

	report := &analytics.Report{
		TotalChargebacks:    42,
		TotalDisputedAmount: 1234.56,
		ChargebackRate:      2.75,
		TrendPct:            -8.3,
		ByCountry: []analytics.CountryBreakdown{
			{Country: "ID", Count: 30, Amount: 900.00},
			{Country: "PH", Count: 12, Amount: 334.56},
		},
		TopMerchants: []analytics.MerchantSummary{
			{MerchantID: "M003", MerchantName: "GamersParadise", Count: 20, Amount: 600.00, Rate: 9.5},
		},
	}

	t.Run("Store And Get Report", func(t *testing.T) {
		err := rc.StoreReport("cty=ID,PH;", report, 5*time.Minute)
		require.NoError(t, err)

		retrieved, hit, err := rc.GetReport("cty=ID,PH;")
		require.NoError(t, err)
		require.True(t, hit)
		assert.Equal(t, report.TotalChargebacks, retrieved.TotalChargebacks)
		assert.Equal(t, report.ChargebackRate, retrieved.ChargebackRate)
		assert.Equal(t, report.ByCountry, retrieved.ByCountry)
		assert.Equal(t, report.TopMerchants, retrieved.TopMerchants)
	})

	t.Run("Miss Is Not An Error", func(t *testing.T) {
		retrieved, hit, err := rc.GetReport("nonexistent")
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Nil(t, retrieved)
	})

	t.Run("Entry Expires", func(t *testing.T) {
		err := rc.StoreReport("short-lived", report, 1*time.Second)
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)

		_, hit, err := rc.GetReport("short-lived")
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestRateLimiting(t *testing.T) {
	rc, mr := setupTestRedis(t)
	defer rc.Close()

	t.Run("Allow Within Limit", func(t *testing.T) {
		mr.FlushAll()

		allowed, err := rc.CheckRateLimit("10.0.0.1", "/api/v1/chargebacks", 5, 1*time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Deny When Limit Exceeded", func(t *testing.T) {
		mr.FlushAll()

		for i := 0; i < 5; i++ {
			allowed, err := rc.CheckRateLimit("10.0.0.2", "/api/v1/chargebacks", 5, 1*time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed, "Request %d should be allowed", i+1)
			time.Sleep(1 * time.Millisecond) // Ensure unique timestamps
		}

		allowed, err := rc.CheckRateLimit("10.0.0.2", "/api/v1/chargebacks", 5, 1*time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed, "6th request should be denied")
	})

	t.Run("Limits Are Per Endpoint", func(t *testing.T) {
		mr.FlushAll()

		for i := 0; i < 3; i++ {
			allowed, err := rc.CheckRateLimit("10.0.0.3", "/api/v1/chargebacks", 3, 1*time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
			time.Sleep(1 * time.Millisecond)
		}

		// A different endpoint still has budget
		allowed, err := rc.CheckRateLimit("10.0.0.3", "/api/v1/metrics/chargebacks", 3, 1*time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
