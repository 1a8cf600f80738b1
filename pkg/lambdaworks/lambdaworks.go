// Package lambdaworks provides the prime field arithmetic the VM is built
// on, over the Starknet prime p = 2^251 + 17*2^192 + 1.
//
// The teacher this package is adapted from bound a cgo shim to a prebuilt
// Rust static library (lambdaworks-math) to get this arithmetic. No such
// artifact is vendored here, so the same Felt surface is implemented on
// top of github.com/consensys/gnark-crypto's stark-curve field element,
// which already carries the exact modulus, stores values in Montgomery
// form, and exposes add/sub/mul plus Legendre/Sqrt over the same prime.
package lambdaworks

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Felt is a canonical representative of a prime field element, 0 <= v < p.
type Felt struct {
	inner fp.Element
}

func fromElement(e fp.Element) Felt {
	return Felt{inner: e}
}

// FeltFromUint64 builds the field element representing value.
func FeltFromUint64(value uint64) Felt {
	var e fp.Element
	e.SetUint64(value)
	return fromElement(e)
}

// FeltFromInt64 builds the field element representing value, reducing a
// negative value modulo p the way from_int is specified to.
func FeltFromInt64(value int64) Felt {
	return FeltFromBigInt(big.NewInt(value))
}

// FeltFromBigInt reduces v modulo p, accepting negative values.
func FeltFromBigInt(v *big.Int) Felt {
	var e fp.Element
	e.SetBigInt(v)
	return fromElement(e)
}

// FeltFromHex parses a "0x"-prefixed or bare hex string.
func FeltFromHex(value string) Felt {
	digits := value
	if len(digits) >= 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		digits = digits[2:]
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return FeltZero()
	}
	return FeltFromBigInt(v)
}

// FeltFromDecString parses a decimal string, which may carry a leading '-'.
func FeltFromDecString(value string) Felt {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("lambdaworks: invalid decimal string " + value)
	}
	return FeltFromBigInt(v)
}

// FeltZero is the additive identity.
func FeltZero() Felt {
	var e fp.Element
	e.SetZero()
	return fromElement(e)
}

// FeltOne is the multiplicative identity.
func FeltOne() Felt {
	var e fp.Element
	e.SetOne()
	return fromElement(e)
}

func (f Felt) IsZero() bool {
	return f.inner.IsZero()
}

// ToU64 returns the value as a uint64, failing if it doesn't fit.
func (f Felt) ToU64() (uint64, error) {
	var b big.Int
	f.inner.BigInt(&b)
	if !b.IsUint64() {
		return 0, newFieldError(InstructionEncodingError, "felt does not fit in a u64")
	}
	return b.Uint64(), nil
}

// ToBigInt returns the canonical representative in [0, p).
func (f Felt) ToBigInt() *big.Int {
	var b big.Int
	f.inner.BigInt(&b)
	return &b
}

// ToSignedBigInt returns a representative in (-p/2, p/2], used whenever a
// felt is reinterpreted as a signed integer offset (e.g. a jump-relative
// target or an address-plus-felt computation).
func (f Felt) ToSignedBigInt() *big.Int {
	v := f.ToBigInt()
	half := new(big.Int).Rsh(Modulus(), 1)
	if v.Cmp(half) > 0 {
		return new(big.Int).Sub(v, Modulus())
	}
	return v
}

// Modulus returns the Starknet prime p.
func Modulus() *big.Int {
	return fp.Modulus()
}

// ToLeBytes encodes the canonical representative as 32 little-endian bytes.
func (f Felt) ToLeBytes() *[32]byte {
	be := f.inner.Bytes()
	var le [32]byte
	for i := 0; i < 32; i++ {
		le[i] = be[31-i]
	}
	return &le
}

// ToBeBytes encodes the canonical representative as 32 big-endian bytes.
func (f Felt) ToBeBytes() *[32]byte {
	be := f.inner.Bytes()
	return &be
}

// FeltFromLeBytes decodes 32 little-endian bytes, reducing modulo p.
func FeltFromLeBytes(bytes *[32]byte) Felt {
	var be [32]byte
	for i := 0; i < 32; i++ {
		be[i] = bytes[31-i]
	}
	var e fp.Element
	e.SetBytes(be[:])
	return fromElement(e)
}

// FeltFromBeBytes decodes 32 big-endian bytes, reducing modulo p.
func FeltFromBeBytes(bytes *[32]byte) Felt {
	var e fp.Element
	e.SetBytes(bytes[:])
	return fromElement(e)
}

// Add returns a+b mod p.
func (a Felt) Add(b Felt) Felt {
	var e fp.Element
	e.Add(&a.inner, &b.inner)
	return fromElement(e)
}

// Sub returns a-b mod p.
func (a Felt) Sub(b Felt) Felt {
	var e fp.Element
	e.Sub(&a.inner, &b.inner)
	return fromElement(e)
}

// Mul returns a*b mod p.
func (a Felt) Mul(b Felt) Felt {
	var e fp.Element
	e.Mul(&a.inner, &b.inner)
	return fromElement(e)
}

// Neg returns -a mod p.
func (a Felt) Neg() Felt {
	var e fp.Element
	e.Neg(&a.inner)
	return fromElement(e)
}

// Square returns a*a mod p.
func (a Felt) Square() Felt {
	var e fp.Element
	e.Square(&a.inner)
	return fromElement(e)
}

// Pow returns a^exp mod p.
func (a Felt) Pow(exp uint64) Felt {
	var e fp.Element
	e.Exp(a.inner, new(big.Int).SetUint64(exp))
	return fromElement(e)
}

// Inv returns the multiplicative inverse of a, or ok=false when a is zero.
// Uses the extended binary GCD via gnark-crypto's Inverse; callers must not
// rely on this being constant-time.
func (a Felt) Inv() (Felt, bool) {
	if a.IsZero() {
		return Felt{}, false
	}
	var e fp.Element
	e.Inverse(&a.inner)
	return fromElement(e), true
}

// Div returns a/b mod p, failing with DivisionByZero when b is zero.
func (a Felt) Div(b Felt) (Felt, error) {
	inv, ok := b.Inv()
	if !ok {
		return Felt{}, newFieldError(DivisionByZero, "division by zero felt")
	}
	return a.Mul(inv), nil
}

// Equal reports whether a and b are the same field element.
func (a Felt) Equal(b Felt) bool {
	return a.inner == b.inner
}

// Lt reports whether a < b when both are read as canonical representatives.
func (a Felt) Lt(b Felt) bool {
	return a.inner.Cmp(&b.inner) < 0
}

// Legendre returns 1 if a is a nonzero quadratic residue, -1 if it's a
// nonresidue, and 0 if a is zero.
func (a Felt) Legendre() int {
	return int(a.inner.Legendre())
}

// Sqrt returns a square root of a following Tonelli-Shanks, or ok=false if
// none exists.
func (a Felt) Sqrt() (Felt, bool) {
	var e fp.Element
	if e.Sqrt(&a.inner) == nil {
		return Felt{}, false
	}
	return fromElement(e), true
}

// ToBitsLe returns the 252 low-order bits of the canonical representative,
// least-significant bit first.
func (a Felt) ToBitsLe() [252]bool {
	v := a.ToBigInt()
	var bits [252]bool
	for i := 0; i < 252; i++ {
		bits[i] = v.Bit(i) == 1
	}
	return bits
}

// IsLexicographicallyLargest reports whether a > (p-1)/2.
func (a Felt) IsLexicographicallyLargest() bool {
	half := new(big.Int).Rsh(new(big.Int).Sub(Modulus(), big.NewInt(1)), 1)
	return a.ToBigInt().Cmp(half) > 0
}

func (a Felt) String() string {
	return a.inner.String()
}
