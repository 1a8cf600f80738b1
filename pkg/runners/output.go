package runners

import (
	"encoding/binary"
	"sort"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm"
)

// traceEntrySize is the byte size of one relocated trace record: three
// little-endian u64 fields, pc/ap/fp in that order.
const traceEntrySize = 3 * 8

// EncodeTrace serializes a relocated trace as spec.md §6 describes: one
// fixed-size record per step, pc then ap then fp, all little-endian u64.
func EncodeTrace(trace []vm.RelocatedTraceEntry) []byte {
	content := make([]byte, 0, len(trace)*traceEntrySize)
	for _, entry := range trace {
		content = binary.LittleEndian.AppendUint64(content, entry.Pc)
		content = binary.LittleEndian.AppendUint64(content, entry.Ap)
		content = binary.LittleEndian.AppendUint64(content, entry.Fp)
	}
	return content
}

// DecodeTrace is the inverse of EncodeTrace.
func DecodeTrace(content []byte) []vm.RelocatedTraceEntry {
	trace := make([]vm.RelocatedTraceEntry, 0, len(content)/traceEntrySize)
	for i := 0; i+traceEntrySize <= len(content); i += traceEntrySize {
		trace = append(trace, vm.RelocatedTraceEntry{
			Pc: binary.LittleEndian.Uint64(content[i : i+8]),
			Ap: binary.LittleEndian.Uint64(content[i+8 : i+16]),
			Fp: binary.LittleEndian.Uint64(content[i+16 : i+24]),
		})
	}
	return trace
}

// addrSize and feltSize are the field widths of one relocated-memory
// record: an 8-byte little-endian address followed by a 32-byte
// little-endian field element.
const addrSize = 8
const feltSize = 32

// EncodeMemory serializes relocated memory as spec.md §6 describes: one
// (address, value) record per occupied cell, records sorted ascending by
// address. Unlike the trace, memory is sparse, so the record carries its
// own address rather than relying on position.
func EncodeMemory(relocated map[uint64]lambdaworks.Felt) []byte {
	addrs := make([]uint64, 0, len(relocated))
	for addr := range relocated {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	content := make([]byte, len(addrs)*(addrSize+feltSize))
	for i, addr := range addrs {
		j := i * (addrSize + feltSize)
		binary.LittleEndian.PutUint64(content[j:j+addrSize], addr)
		leBytes := relocated[addr].ToLeBytes()
		copy(content[j+addrSize:j+addrSize+feltSize], leBytes[:])
	}
	return content
}

// DecodeMemory is the inverse of EncodeMemory.
func DecodeMemory(content []byte) map[uint64]lambdaworks.Felt {
	recordSize := addrSize + feltSize
	relocated := make(map[uint64]lambdaworks.Felt, len(content)/recordSize)
	for i := 0; i+recordSize <= len(content); i += recordSize {
		addr := binary.LittleEndian.Uint64(content[i : i+addrSize])
		var leBytes [32]byte
		copy(leBytes[:], content[i+addrSize:i+recordSize])
		relocated[addr] = lambdaworks.FeltFromLeBytes(&leBytes)
	}
	return relocated
}
