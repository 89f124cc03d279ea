package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSteppingClock(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewSteppingClock(base, time.Second)

	assert.Equal(t, base, clock.Now())
	assert.Equal(t, base.Add(time.Second), clock.Now())
	assert.Equal(t, int64(2), clock.Calls())

	clock.Reset()
	assert.Equal(t, base, clock.Now())
}

func TestSequentialIDsThreadSafe(t *testing.T) {
	gen := NewSequentialIDs("cp")

	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen.Store(gen.Generate(), true)
		}()
	}
	wg.Wait()

	count := 0
	seen.Range(func(_, _ any) bool { count++; return true })
	assert.Equal(t, 50, count)
	assert.Equal(t, "cp-51", gen.Generate())
}

func TestIPSpellingRecords(t *testing.T) {
	recs := IPSpellingRecords(1000)
	counts := map[string]int{}
	for _, rec := range recs {
		for _, k := range []string{"IP", "ip_address", "IpAddress"} {
			if _, ok := rec[k]; ok {
				counts[k]++
			}
		}
	}
	assert.Equal(t, 950, counts["IP"]+counts["ip_address"]+counts["IpAddress"])
	assert.Positive(t, counts["IP"])
	assert.Positive(t, counts["ip_address"])
	assert.Positive(t, counts["IpAddress"])
}

func TestNestedSparseRecords(t *testing.T) {
	recs := NestedSparseRecords(100)
	nested := 0
	for _, rec := range recs {
		if _, ok := rec["device_info"]; ok {
			nested++
		}
	}
	assert.Equal(t, 10, nested)
}
