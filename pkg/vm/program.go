package vm

import "github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"

// Identifier is one entry of a compiled program's identifier table: the
// symbol table an external hint executor consults to resolve constants,
// labels and struct member offsets by name. The core never interprets
// these fields itself; it only carries them through from loading so a
// hint executor downstream doesn't lose them.
type Identifier struct {
	PC        *uint64
	Value     *string
	FullName  *string
	Members   map[string]Identifier
	CairoType *string
}

// Program is the external Program{data, main_offset, builtins} contract
// spec.md §6 names, enriched with the identifier/entrypoint/label tables a
// full compiled-program artifact carries (the core only needs to carry them
// through to the runner and an external hint executor). LoadProgramJSON
// fills Identifiers and Entrypoints; it leaves Labels nil.
type Program struct {
	Data        []memory.MaybeRelocatable
	MainOffset  uint64
	Builtins    []string
	Identifiers *map[string]Identifier
	Entrypoints map[string]uint64
	Labels      map[string]uint64
}
