package memory

import (
	"fmt"
	"math/big"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
)

// Relocatable is a two-tier address: a segment index (negative for a
// temporary segment not yet resolved) plus a zero-based offset within it.
// Comparable by value, so it can be used directly as a map key.
type Relocatable struct {
	SegmentIndex int
	Offset       uint64
}

func (r Relocatable) String() string {
	return fmt.Sprintf("%d:%d", r.SegmentIndex, r.Offset)
}

// IsEqual reports segment-plus-offset equality.
func (r Relocatable) IsEqual(other Relocatable) bool {
	return r == other
}

// AddUint returns r with offset advanced by k.
func (r Relocatable) AddUint(k uint64) (Relocatable, error) {
	return Relocatable{SegmentIndex: r.SegmentIndex, Offset: r.Offset + k}, nil
}

// SubUint returns r with offset receded by k, failing with OffsetExceeded
// on underflow.
func (r Relocatable) SubUint(k uint64) (Relocatable, error) {
	if k > r.Offset {
		return Relocatable{}, newError(OffsetExceeded, "offset %d underflows by %d", r.Offset, k-r.Offset)
	}
	return Relocatable{SegmentIndex: r.SegmentIndex, Offset: r.Offset - k}, nil
}

// AddInt applies a signed integer offset.
func (r Relocatable) AddInt(k int64) (Relocatable, error) {
	if k >= 0 {
		return r.AddUint(uint64(k))
	}
	return r.SubUint(uint64(-k))
}

// AddFelt interprets f as a signed offset (its canonical representative
// read in (-p/2, p/2]) and applies it to the offset component.
func (r Relocatable) AddFelt(f lambdaworks.Felt) (Relocatable, error) {
	signed := f.ToSignedBigInt()
	if signed.Sign() >= 0 {
		if !signed.IsUint64() {
			return Relocatable{}, newError(OffsetExceeded, "felt offset %s does not fit in a u64", signed.String())
		}
		return r.AddUint(signed.Uint64())
	}
	mag := new(big.Int).Neg(signed)
	if !mag.IsUint64() {
		return Relocatable{}, newError(OffsetExceeded, "felt offset %s does not fit in a u64", signed.String())
	}
	return r.SubUint(mag.Uint64())
}

// AddMaybeRelocatable adds a Value operand (an Address operand is invalid
// here, since two addresses cannot be combined via plain addition).
func (r Relocatable) AddMaybeRelocatable(other MaybeRelocatable) (Relocatable, error) {
	f, ok := other.GetFelt()
	if !ok {
		return Relocatable{}, newError(ExpectedInteger, "cannot add two relocatable values")
	}
	return r.AddFelt(f)
}

// Sub returns the (non-negative) distance between two addresses in the same
// segment, failing with InvalidSub when segments differ.
func (r Relocatable) Sub(other Relocatable) (lambdaworks.Felt, error) {
	if r.SegmentIndex != other.SegmentIndex {
		return lambdaworks.Felt{}, newError(InvalidSub, "cannot subtract addresses from different segments (%d, %d)", r.SegmentIndex, other.SegmentIndex)
	}
	if r.Offset < other.Offset {
		return lambdaworks.Felt{}, newError(OffsetExceeded, "offset %d underflows subtracting %d", r.Offset, other.Offset)
	}
	return lambdaworks.FeltFromUint64(r.Offset - other.Offset), nil
}

// SubFelt is the Relocatable analogue of AddFelt with a negated offset.
func (r Relocatable) SubFelt(f lambdaworks.Felt) (Relocatable, error) {
	return r.AddFelt(f.Neg())
}

// RelocateAddress flattens r into a single absolute index, given a table
// mapping each positive segment index to its absolute base.
func (r Relocatable) RelocateAddress(relocationTable []uint64) uint64 {
	return relocationTable[r.SegmentIndex] + r.Offset
}
