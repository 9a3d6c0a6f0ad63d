package reference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tnp1/internal/collatz"
	"github.com/calvinalkan/tnp1/internal/reference"
	"github.com/calvinalkan/tnp1/internal/search"
)

func Test_Count_Returns_Known_Total_Stopping_Times(t *testing.T) {
	t.Parallel()

	known := map[uint64]uint64{
		0:         0,
		1:         0,
		2:         1,
		7:         16,
		27:        111,
		871:       178,
		837799:    524,
		63728127:  949,
		670617279: 986,
	}

	for n, steps := range known {
		assert.Equal(t, steps, reference.Count(n), "n=%d", n)
	}
}

func Test_Count_Agrees_With_Doubled_Steps_Below_Ten_Thousand(t *testing.T) {
	t.Parallel()

	for n := uint64(2); n < 10_000; n++ {
		reached, steps := collatz.Descend(n, 2)
		require.Equal(t, uint64(1), reached)
		require.Equal(t, steps, reference.Count(n), "n=%d", n)
	}
}

func Test_Count_Switches_To_Big_Integers_When_Value_Would_Overflow(t *testing.T) {
	t.Parallel()

	// 2^64-1 is odd; 3n+1 overflows uint64 on the first step.
	assert.Equal(t, uint64(863), reference.Count(^uint64(0)))
}

func Test_Cells_Seeds_Sentinel_And_Base_Case(t *testing.T) {
	t.Parallel()

	cells := reference.Cells(10)

	assert.Equal(t, []uint16{collatz.SentinelMax, 0, 1, 7, 2, 5, 8, 16, 3, 19}, cells)
	assert.Empty(t, reference.Cells(0))
}

func Test_Search_Stops_At_Threshold_Chunk_For_Small_Profile(t *testing.T) {
	t.Parallel()

	p, err := search.Profile("small")
	require.NoError(t, err)

	res := reference.Search(p)

	assert.Equal(t, search.Max{N: 27, Iterations: 111}, res.Max)
	assert.Equal(t, uint64(2), res.Chunks)
	assert.Equal(t, search.StopThreshold, res.Reason)
	assert.Zero(t, res.Wrapped)
}

func Test_Search_Stops_At_Domain_End_When_Threshold_Unreachable(t *testing.T) {
	t.Parallel()

	res := reference.Search(search.Params{StopAfter: 1 << 20, Workers: 1, ChunkSize: 16, CacheSize: 100})

	assert.Equal(t, search.StopDomainExhausted, res.Reason)
	assert.Equal(t, search.Max{N: 97, Iterations: 118}, res.Max)
	assert.Equal(t, uint64(7), res.Chunks)
}

// The default profile cannot reach the 16 bit limit: the longest trajectory
// below 2^31 is far shorter than 65535 steps, so counts near the stop
// threshold never wrap.
func Test_Default_Profile_Stays_Below_Count_Width(t *testing.T) {
	t.Parallel()

	// Record holder for the longest trajectory below 2^31.
	const recordN, recordSteps = 1674652263, 1008

	steps := reference.Count(recordN)
	require.Equal(t, uint64(recordSteps), steps)
	require.Equal(t, uint64(1000), reference.Count(1412987847), "first value to reach the default threshold")

	_, wrapped := collatz.Narrow(steps)
	assert.False(t, wrapped)

	p := search.DefaultParams()
	assert.Less(t, p.StopAfter, uint64(1)<<collatz.Width)
	assert.Less(t, p.StopAfter, uint64(recordSteps), "threshold must be reachable inside the domain")
}
