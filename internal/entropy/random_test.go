package entropy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := NewSource(7)
	b := NewSource(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestRangeStaysInBounds(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 1000; i++ {
		v := s.Range(3, 9)
		assert.GreaterOrEqual(t, v, 3.0)
		assert.Less(t, v, 9.0)
	}
}

func TestIntNStaysInBounds(t *testing.T) {
	s := NewSource(2)
	for i := 0; i < 1000; i++ {
		v := s.IntN(5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 5)
	}
}

func TestChanceExtremes(t *testing.T) {
	s := NewSource(3)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Chance(0))
		assert.True(t, s.Chance(1))
	}
}

func TestConcurrentDrawsDoNotRace(t *testing.T) {
	s := NewSource(4)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.Float64()
				s.IntN(10)
			}
		}()
	}
	wg.Wait()
}
