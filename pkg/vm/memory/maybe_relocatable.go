package memory

import "github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"

// MaybeRelocatable is the tagged union every memory cell and every operand
// is built from: either a field element or a relocatable address. Holding
// the tag in a plain interface value (rather than a discriminant plus two
// fields) means two cells compare equal with == exactly when they hold the
// same kind and the same value, which is what the write-once memory check
// in Memory.Insert relies on.
type MaybeRelocatable struct {
	inner interface{}
}

// NewMaybeRelocatableFelt wraps a field element.
func NewMaybeRelocatableFelt(f lambdaworks.Felt) *MaybeRelocatable {
	return &MaybeRelocatable{inner: f}
}

// NewMaybeRelocatableRelocatable wraps an address.
func NewMaybeRelocatableRelocatable(r Relocatable) *MaybeRelocatable {
	return &MaybeRelocatable{inner: r}
}

// GetFelt returns the held field element, or ok=false if this cell holds an
// address instead.
func (m MaybeRelocatable) GetFelt() (lambdaworks.Felt, bool) {
	f, ok := m.inner.(lambdaworks.Felt)
	return f, ok
}

// GetRelocatable returns the held address, or ok=false if this cell holds a
// field element instead.
func (m MaybeRelocatable) GetRelocatable() (Relocatable, bool) {
	r, ok := m.inner.(Relocatable)
	return r, ok
}

// IntoFelt is GetFelt with the spec's error kind on mismatch.
func (m MaybeRelocatable) IntoFelt() (lambdaworks.Felt, error) {
	f, ok := m.GetFelt()
	if !ok {
		return lambdaworks.Felt{}, newError(ExpectedInteger, "maybe-relocatable %v does not hold a field element", m)
	}
	return f, nil
}

// IntoRelocatable is GetRelocatable with the spec's error kind on mismatch.
func (m MaybeRelocatable) IntoRelocatable() (Relocatable, error) {
	r, ok := m.GetRelocatable()
	if !ok {
		return Relocatable{}, newError(ExpectedRelocatable, "maybe-relocatable %v does not hold an address", m)
	}
	return r, nil
}

// IsZero reports whether this cell holds the field element zero; an
// address is never considered zero.
func (m MaybeRelocatable) IsZero() bool {
	f, ok := m.GetFelt()
	return ok && f.IsZero()
}

// IsEqual reports value equality, tag included.
func (m MaybeRelocatable) IsEqual(other MaybeRelocatable) bool {
	return m == other
}

// Add implements the res_logic=Add rule: Value+Value and Address+Value are
// both defined, Address+Address fails RelocatableAdd (two addresses cannot
// be combined by plain addition).
func (m MaybeRelocatable) Add(other MaybeRelocatable) (MaybeRelocatable, error) {
	if mf, ok := m.GetFelt(); ok {
		if of, ok := other.GetFelt(); ok {
			return *NewMaybeRelocatableFelt(mf.Add(of)), nil
		}
		or, _ := other.GetRelocatable()
		rel, err := or.AddFelt(mf)
		if err != nil {
			return MaybeRelocatable{}, err
		}
		return *NewMaybeRelocatableRelocatable(rel), nil
	}
	mr, _ := m.GetRelocatable()
	if of, ok := other.GetFelt(); ok {
		rel, err := mr.AddFelt(of)
		if err != nil {
			return MaybeRelocatable{}, err
		}
		return *NewMaybeRelocatableRelocatable(rel), nil
	}
	return MaybeRelocatable{}, newError(RelocatableAdd, "cannot add two relocatable values")
}

// Sub implements Value-Value and Address-Value; Address-Address returns the
// plain field distance via Relocatable.Sub.
func (m MaybeRelocatable) Sub(other MaybeRelocatable) (MaybeRelocatable, error) {
	if mf, ok := m.GetFelt(); ok {
		of, ok := other.GetFelt()
		if !ok {
			return MaybeRelocatable{}, newError(ExpectedInteger, "cannot subtract an address from a field element")
		}
		return *NewMaybeRelocatableFelt(mf.Sub(of)), nil
	}
	mr, _ := m.GetRelocatable()
	if or, ok := other.GetRelocatable(); ok {
		dist, err := mr.Sub(or)
		if err != nil {
			return MaybeRelocatable{}, err
		}
		return *NewMaybeRelocatableFelt(dist), nil
	}
	of, _ := other.GetFelt()
	rel, err := mr.SubFelt(of)
	if err != nil {
		return MaybeRelocatable{}, err
	}
	return *NewMaybeRelocatableRelocatable(rel), nil
}

// Mul implements the res_logic=Mul rule: both operands must be field
// values, else PureValue.
func (m MaybeRelocatable) Mul(other MaybeRelocatable) (MaybeRelocatable, error) {
	mf, ok := m.GetFelt()
	if !ok {
		return MaybeRelocatable{}, newError(PureValue, "cannot multiply a relocatable value")
	}
	of, ok := other.GetFelt()
	if !ok {
		return MaybeRelocatable{}, newError(PureValue, "cannot multiply a relocatable value")
	}
	return *NewMaybeRelocatableFelt(mf.Mul(of)), nil
}
