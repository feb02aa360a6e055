package seed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMathRandDeterministic(t *testing.T) {
	a := NewMathRand()
	b := NewMathRand()

	require.NoError(t, Apply(42, a, b))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Rand().Int63(), b.Rand().Int63())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := NewMathRand()
	b := NewMathRand()

	require.NoError(t, a.Seed(1))
	require.NoError(t, b.Seed(2))

	assert.NotEqual(t, a.Rand().Int63(), b.Rand().Int63())
}

func TestApplySeedsAllSources(t *testing.T) {
	var got []int64
	record := func(name string) Source {
		return Func(name, func(s int64) error {
			got = append(got, s)
			return nil
		})
	}

	require.NoError(t, Apply(7, record("a"), record("b"), record("c")))
	assert.Equal(t, []int64{7, 7, 7}, got)
}

func TestApplyAggregatesFailures(t *testing.T) {
	boom := errors.New("boom")
	var seeded bool

	err := Apply(7,
		Func("broken", func(int64) error { return boom }),
		Func("working", func(int64) error { seeded = true; return nil }),
	)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "seed broken")
	// Later sources are still attempted after a failure.
	assert.True(t, seeded)
}

func TestApplyNoSources(t *testing.T) {
	assert.NoError(t, Apply(7))
}
