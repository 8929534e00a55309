// Copyright 2019-2025 The Liqo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ipamcore

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math/bits"
	"net/netip"
	"strconv"
	"strings"
)

const addressBits = 32

// Address is an IPv4 address expressed as its 32-bit integer value.
type Address uint32

// ParseAddress parses an IPv4 address in dotted decimal notation.
func ParseAddress(s string) (Address, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil || !addr.Is4() {
		return 0, &ValidationError{Field: "address", Value: s, Reason: "not a valid IPv4 address"}
	}
	return AddressFromNetip(addr), nil
}

// MustParseAddress is like ParseAddress, but panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// AddressFromNetip converts an IPv4 netip.Addr into an Address.
func AddressFromNetip(addr netip.Addr) Address {
	b := addr.As4()
	return Address(binary.BigEndian.Uint32(b[:]))
}

// Netip returns the netip.Addr representation of the address.
func (a Address) Netip() netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(a))
	return netip.AddrFrom4(b)
}

// String returns the dotted decimal representation of the address.
func (a Address) String() string {
	return a.Netip().String()
}

// Range is an inclusive interval of IPv4 addresses.
type Range struct {
	Start Address
	End   Address
}

// NewRange returns the range [start, end], or a ValidationError if start is greater than end.
func NewRange(start, end Address) (Range, error) {
	if start > end {
		return Range{}, &ValidationError{Field: "range", Value: fmt.Sprintf("%s-%s", start, end),
			Reason: "start address is greater than end address"}
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange parses a range given as a pair of dotted decimal addresses.
func ParseRange(start, end string) (Range, error) {
	s, err := ParseAddress(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseAddress(end)
	if err != nil {
		return Range{}, err
	}
	return NewRange(s, e)
}

// ParseCIDR parses a CIDR literal in the form "a.b.c.d/n". A bare first octet is accepted as
// a shorthand for "a.0.0.0", possibly zero-padded (e.g. "001/8").
func ParseCIDR(s string) (Range, error) {
	invalid := func(reason string) error {
		return &ValidationError{Field: "cidr", Value: s, Reason: reason}
	}

	addrPart, bitsPart, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return Range{}, invalid("missing prefix length")
	}

	ones, err := strconv.Atoi(bitsPart)
	if err != nil || ones < 0 || ones > addressBits {
		return Range{}, invalid("prefix length must be between 0 and 32")
	}

	var start Address
	if strings.Contains(addrPart, ".") {
		if start, err = ParseAddress(addrPart); err != nil {
			return Range{}, invalid("not a valid IPv4 address")
		}
	} else {
		octet, err := strconv.Atoi(addrPart)
		if err != nil || octet < 0 || octet > 255 {
			return Range{}, invalid("not a valid first octet")
		}
		start = Address(octet) << 24
	}

	hostMask := hostMaskFor(ones)
	if uint32(start)&hostMask != 0 {
		return Range{}, invalid("host bits must be zero")
	}
	return Range{Start: start, End: Address(uint32(start) | hostMask)}, nil
}

// MustParseCIDR is like ParseCIDR, but panics on error.
func MustParseCIDR(s string) Range {
	r, err := ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of addresses in the range.
func (r Range) Len() uint64 {
	return uint64(r.End) - uint64(r.Start) + 1
}

// Contains returns whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Compare orders ranges by start address.
func (r Range) Compare(other Range) int {
	return cmp.Compare(r.Start, other.Start)
}

// Prefix returns the network prefix equal to the range, or ErrNotAligned
// if the range is not a single power-of-two aligned block.
func (r Range) Prefix() (netip.Prefix, error) {
	length := r.Len()
	if length&(length-1) != 0 {
		return netip.Prefix{}, ErrNotAligned
	}
	hostBits := bits.TrailingZeros64(length)
	if uint32(r.Start)&hostMaskFor(addressBits-hostBits) != 0 {
		return netip.Prefix{}, ErrNotAligned
	}
	return netip.PrefixFrom(r.Start.Netip(), addressBits-hostBits), nil
}

// CIDR returns the CIDR notation of the range, or ErrNotAligned if it cannot be expressed as one block.
func (r Range) CIDR() (string, error) {
	prefix, err := r.Prefix()
	if err != nil {
		return "", err
	}
	return prefix.String(), nil
}

// String returns the CIDR notation when the range is aligned, and the "start-end" form otherwise.
func (r Range) String() string {
	if cidr, err := r.CIDR(); err == nil {
		return cidr
	}
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Decompose splits the range into the minimal ascending sequence of maximal aligned blocks covering it.
func (r Range) Decompose() []Range {
	var blocks []Range

	end := uint64(r.End)
	for cursor := uint64(r.Start); cursor <= end; {
		// The largest block starting at cursor is bounded both by the alignment of cursor
		// and by the number of addresses left before the end of the range.
		alignment := addressBits
		if cursor != 0 {
			alignment = bits.TrailingZeros32(uint32(cursor))
		}
		fit := bits.Len64(end-cursor+1) - 1

		size := min(alignment, fit)
		last := cursor + 1<<size - 1
		blocks = append(blocks, Range{Start: Address(cursor), End: Address(last)})
		cursor = last + 1
	}

	return blocks
}

// hostMaskFor returns the mask of the host bits of a prefix with the given length.
func hostMaskFor(ones int) uint32 {
	if ones <= 0 {
		return ^uint32(0)
	}
	return ^uint32(0) >> ones
}
