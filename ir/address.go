package ir

import "fmt"

// Address is an opaque machine-word value with total ordering, delivered
// by the (out-of-scope) front end and binary loader. It carries no
// endianness or pointer-size semantics of its own beyond total ordering
// and the arithmetic described in §6.
type Address uint64

// AddressInvalid is the distinguished sentinel for "no address"/"not yet
// resolved", e.g. an indirect or computed branch destination.
const AddressInvalid Address = ^Address(0)

// Valid reports whether a is anything other than the invalid sentinel.
func (a Address) Valid() bool { return a != AddressInvalid }

// Plus returns a+delta (§6, "+Δ").
func (a Address) Plus(delta int64) Address {
	if !a.Valid() {
		return a
	}
	return Address(int64(a) + delta)
}

// Minus returns a-delta (§6, "-Δ").
func (a Address) Minus(delta int64) Address {
	if !a.Valid() {
		return a
	}
	return Address(int64(a) - delta)
}

// Diff returns a-b as a signed delta (§6, "-").
func (a Address) Diff(b Address) int64 { return int64(a) - int64(b) }

func (a Address) String() string {
	if !a.Valid() {
		return "<invalid>"
	}
	return fmt.Sprintf("0x%x", uint64(a))
}
