package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandStr(t *testing.T) {
	s := RandStr(10)

	assert.Len(t, s, 10)
	for _, r := range s {
		assert.Contains(t, charset, string(r))
	}
}

func TestRandStrConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, RandStr(16), 16)
		}()
	}
	wg.Wait()
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(16)
	require.NoError(t, err)
	b, err := GenerateToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
