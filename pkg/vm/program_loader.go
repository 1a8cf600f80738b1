package vm

import (
	"encoding/json"
	"fmt"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"
)

// compiledProgram mirrors the on-disk JSON shape of a compiled Cairo
// program: hex-encoded data cells, the entrypoint offset, and the optional
// fields an external hint executor consumes but the core never reads.
type compiledProgram struct {
	Data             []string                  `json:"data"`
	Main             *uint64                   `json:"main"`
	MainScope        string                    `json:"main_scope"`
	Builtins         []string                  `json:"builtins"`
	Identifiers      map[string]jsonIdentifier `json:"identifiers"`
	ReferenceManager json.RawMessage           `json:"reference_manager"`
	Hints            json.RawMessage           `json:"hints"`
}

type jsonIdentifier struct {
	PC        *uint64                   `json:"pc"`
	Value     *string                   `json:"value"`
	FullName  *string                   `json:"full_name"`
	CairoType *string                   `json:"cairo_type"`
	Members   map[string]jsonIdentifier `json:"members"`
}

func toIdentifier(j jsonIdentifier) Identifier {
	id := Identifier{PC: j.PC, Value: j.Value, FullName: j.FullName, CairoType: j.CairoType}
	if len(j.Members) > 0 {
		id.Members = make(map[string]Identifier, len(j.Members))
		for name, member := range j.Members {
			id.Members[name] = toIdentifier(member)
		}
	}
	return id
}

// LoadProgramJSON parses a compiled Cairo program and produces the
// Program{Data, MainOffset, Builtins} contract spec.md §6 requires, plus
// the identifier and entrypoint tables an external hint executor may want.
// Hints and reference_manager are decoded as raw JSON but are not kept on
// the returned Program; this package never interprets them.
func LoadProgramJSON(content []byte) (Program, error) {
	var raw compiledProgram
	if err := json.Unmarshal(content, &raw); err != nil {
		return Program{}, fmt.Errorf("decoding cairo program json: %w", err)
	}

	data := make([]memory.MaybeRelocatable, 0, len(raw.Data))
	for i, hex := range raw.Data {
		felt, err := feltFromProgramHex(hex)
		if err != nil {
			return Program{}, fmt.Errorf("program data[%d]: %w", i, err)
		}
		data = append(data, *memory.NewMaybeRelocatableFelt(felt))
	}

	program := Program{
		Data:     data,
		Builtins: raw.Builtins,
	}
	if raw.Main != nil {
		program.MainOffset = *raw.Main
	}

	if raw.Identifiers != nil {
		identifiers := make(map[string]Identifier, len(raw.Identifiers))
		entrypoints := make(map[string]uint64)
		for name, j := range raw.Identifiers {
			id := toIdentifier(j)
			identifiers[name] = id
			// A function identifier carries a pc and no scalar value;
			// struct/const identifiers carry value or members instead.
			if id.PC != nil && j.Value == nil && len(j.Members) == 0 {
				entrypoints[name] = *id.PC
			}
		}
		program.Identifiers = &identifiers
		program.Entrypoints = entrypoints
	}

	return program, nil
}

// feltFromProgramHex parses one "0x..." data cell into a field element,
// matching spec.md §6's "hex-encoded nonnegative integers < p".
func feltFromProgramHex(hex string) (lambdaworks.Felt, error) {
	if hex == "" {
		return lambdaworks.Felt{}, fmt.Errorf("empty data cell")
	}
	return lambdaworks.FeltFromHex(hex), nil
}
