package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierServiceGenerateFormat(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	svc := NewIdentifierService(
		WithIdentifierClock(func() time.Time { return fixed }),
		WithRandomSource(func(int) int { return 10 }),
	)

	id := svc.Generate()
	assert.Equal(t, "KZ-LOYW3V28-001AAAAA", id)
	assert.True(t, ValidateID(id))

	ts, ok := ExtractTimestamp(id)
	require.True(t, ok)
	assert.Equal(t, fixed.UnixMilli(), ts.UnixMilli())
}

func TestExtractTimestampTracksWallClock(t *testing.T) {
	svc := NewIdentifierService()

	before := time.Now()
	id := svc.Generate()
	ts, ok := ExtractTimestamp(id)
	require.True(t, ok, id)
	assert.WithinDuration(t, before, ts, time.Second)
	assert.False(t, ts.Before(before.Truncate(time.Millisecond)))
}

func TestIdentifierServiceCounterIsBase36(t *testing.T) {
	seq := &AtomicSequence{}
	seq.counter.Store(35)
	svc := NewIdentifierService(WithSequence(seq), WithRandomSource(func(int) int { return 0 }))

	id := svc.Generate()
	parts := strings.Split(id, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "010", parts[2][:3])
}

func TestIdentifierServiceConcurrentUniqueness(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	svc := NewIdentifierService(
		WithIdentifierClock(func() time.Time { return fixed }),
		WithRandomSource(func(int) int { return 0 }),
	)

	const workers, perWorker = 8, 250
	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := svc.Generate()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestValidateID(t *testing.T) {
	assert.True(t, ValidateID("KZ-ABC123-XYZ"))
	assert.False(t, ValidateID("kz-abc-xyz"))
	assert.False(t, ValidateID("KZ-ABC"))
	assert.False(t, ValidateID("KZ--XYZ"))
	assert.False(t, ValidateID("AB-ABC-XYZ"))
	assert.False(t, ValidateID(""))
}

func TestExtractTimestampMalformed(t *testing.T) {
	_, ok := ExtractTimestamp("garbage")
	assert.False(t, ok)
	_, ok = ExtractTimestamp("KZ-!!!-001")
	assert.False(t, ok)
	_, ok = ExtractTimestamp("KZ--001")
	assert.False(t, ok)
}
