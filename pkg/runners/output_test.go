package runners_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/runners"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm"
)

func TestEncodeDecodeTraceRoundTrips(t *testing.T) {
	trace := []vm.RelocatedTraceEntry{
		{Ap: 10, Fp: 10, Pc: 0},
		{Ap: 12, Fp: 10, Pc: 3},
	}

	content := runners.EncodeTrace(trace)
	require.Len(t, content, 2*24)

	// first record's fields must be pc, ap, fp in that order.
	require.Equal(t, uint64(0), leUint64(content[0:8]))
	require.Equal(t, uint64(10), leUint64(content[8:16]))
	require.Equal(t, uint64(10), leUint64(content[16:24]))

	decoded := runners.DecodeTrace(content)
	require.Equal(t, trace, decoded)
}

func TestEncodeDecodeMemoryRoundTripsAndSorts(t *testing.T) {
	relocated := map[uint64]lambdaworks.Felt{
		5: lambdaworks.FeltFromUint64(7),
		1: lambdaworks.FeltFromUint64(9),
	}

	content := runners.EncodeMemory(relocated)
	require.Len(t, content, 2*(8+32))

	// first record must be the lower address.
	require.Equal(t, uint64(1), leUint64(content[0:8]))

	decoded := runners.DecodeMemory(content)
	require.Equal(t, relocated, decoded)
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
