package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire-alert-service/internal/domain/models"
)

func TestStatusCacheDefaultsToSafe(t *testing.T) {
	cache := NewStatusCache()
	assert.Equal(t, models.StatusSafe, cache.Get().Status)
	assert.False(t, cache.Get().UpdatedAt.IsZero())
}

func TestStatusCacheSetNormalizes(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Status
	}{
		{"fire", models.StatusFire},
		{"FIRE", models.StatusFire},
		{"Fire", models.StatusFire},
		{"safe", models.StatusSafe},
		{"sAfE", models.StatusSafe},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cache := NewStatusCache()
			value, err := cache.Set(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, value.Status)
			assert.Equal(t, value, cache.Get())
		})
	}
}

func TestStatusCacheRejectsInvalid(t *testing.T) {
	cache := NewStatusCache()
	_, err := cache.Set("fire")
	require.NoError(t, err)
	before := cache.Get()

	for _, raw := range []string{"", "smoke", "FIRED", "0", "SAFE!"} {
		_, err := cache.Set(raw)
		assert.ErrorIs(t, err, ErrInvalidStatus, raw)
		assert.Equal(t, before, cache.Get(), raw)
	}
}

func TestStatusCacheLastWriteWins(t *testing.T) {
	cache := NewStatusCache()
	_, _ = cache.Set("FIRE")
	_, _ = cache.Set("FIRE")
	_, _ = cache.Set("SAFE")

	assert.Equal(t, models.StatusSafe, cache.Get().Status)
}

func TestStatusCacheConcurrentAccess(t *testing.T) {
	cache := NewStatusCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = cache.Set("fire")
			} else {
				_, _ = cache.Set("safe")
			}
		}(i)
		go func() {
			defer wg.Done()
			status := cache.Get().Status
			assert.Contains(t, []models.Status{models.StatusFire, models.StatusSafe}, status)
		}()
	}
	wg.Wait()
}
