// Package hydor is the public entry point for compiling and running
// Hydor programs. The heavy lifting lives in the compiler and bytecode
// packages; this package wires the pipeline stages together.
package hydor

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/hydor-lang/hydor/compiler"
	"github.com/hydor-lang/hydor/pkg/bytecode"
)

var log = commonlog.GetLogger("hydor")

// ErrRejected is returned by Run when the source fails to compile. The
// diagnostics carry the details; this sentinel lets callers distinguish
// compile rejection from runtime faults with errors.Is.
var ErrRejected = errors.New("program rejected")

// Compile runs the full front half of the pipeline: lex, parse, check,
// emit, serialize. It returns the .hydc bytes, or a non-empty diagnostic
// list when the source is rejected. Exactly one of the results is
// meaningful: rejected programs produce no bytecode at all.
func Compile(source string) ([]byte, []compiler.Diagnostic) {
	data, _, diags := CompileWithDebug(source)
	return data, diags
}

// CompileWithDebug compiles like Compile and additionally returns the
// CBOR-encoded debug sidecar (.hydd) mapping instructions to source
// positions.
func CompileWithDebug(source string) (hydc, hydd []byte, diags []compiler.Diagnostic) {
	prog, parseDiags := compiler.Parse(source)
	if len(parseDiags) > 0 {
		return nil, nil, parseDiags
	}

	slots, checkDiags := compiler.Check(prog)
	if len(checkDiags) > 0 {
		return nil, nil, checkDiags
	}

	bc, debug, err := bytecode.Emit(prog, slots)
	if err != nil {
		return nil, nil, []compiler.Diagnostic{{Kind: compiler.CapacityError, Message: err.Error()}}
	}
	hydc = bc.Serialize()

	hydd, err = debug.Marshal()
	if err != nil {
		// Debug info is best-effort; the bytecode itself is still good.
		log.Errorf("encoding debug info: %s", err)
		hydd = nil
	}

	return hydc, hydd, nil
}

// Run compiles and executes source in one step, returning the value of
// the last expression statement. Compile rejection wraps ErrRejected;
// use FormatDiagnostics for a human-readable report.
func Run(source string) (bytecode.Value, error) {
	hydc, hydd, diags := CompileWithDebug(source)
	if len(diags) > 0 {
		return bytecode.Value{}, fmt.Errorf("%w: %s", ErrRejected, diags[0].Error())
	}
	return RunBytes(hydc, hydd)
}

// RunBytes loads and executes previously compiled bytecode. hydd may be
// nil; faults then report instruction indices without source positions.
func RunBytes(hydc, hydd []byte) (bytecode.Value, error) {
	return RunBytesWithStack(hydc, hydd, 0)
}

// RunBytesWithStack is RunBytes with an explicit operand stack limit.
// maxStack values below one keep the VM default.
func RunBytesWithStack(hydc, hydd []byte, maxStack int) (bytecode.Value, error) {
	prog, err := bytecode.Load(hydc)
	if err != nil {
		return bytecode.Value{}, err
	}

	var debug *bytecode.DebugInfo
	if hydd != nil {
		debug, err = bytecode.UnmarshalDebugInfo(hydd)
		if err != nil {
			log.Errorf("decoding debug info: %s", err)
			debug = nil
		}
	}

	runID := uuid.NewString()
	log.Debugf("run %s: %d instructions, %d constants, %d locals",
		runID, len(prog.Instructions), len(prog.Constants), prog.LocalSlots)

	vm := bytecode.NewVM()
	vm.SetMaxStack(maxStack)
	if err := vm.ExecuteWithDebug(prog, debug); err != nil {
		log.Debugf("run %s faulted: %s", runID, err)
		return bytecode.Value{}, err
	}

	return vm.LastPopped(), nil
}

// Disassemble loads bytecode and returns a human-readable listing.
func Disassemble(hydc []byte) (string, error) {
	prog, err := bytecode.Load(hydc)
	if err != nil {
		return "", err
	}
	return prog.Disassemble(), nil
}

// FormatDiagnostics renders diagnostics against their source with caret
// markers, one block per diagnostic.
func FormatDiagnostics(source string, diags []compiler.Diagnostic) string {
	return compiler.FormatDiagnostics(source, diags)
}
