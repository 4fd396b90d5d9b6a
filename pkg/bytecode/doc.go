// Package bytecode defines the Hydor executable format and the virtual
// machine that runs it.
//
// The format is designed for:
//   - Trivial decoding (fixed 9-byte instruction records, little-endian)
//   - Load-time validation (every index is bounds-checked before execution)
//   - Stable evolution (versioned container, reserved opcode ranges)
//
// # Architecture Overview
//
// The package has four components:
//
//   - Opcodes: type-specialized stack instructions. The type checker
//     guarantees operand types, so the emitter picks the specialized
//     opcode (ADD_INT vs ADD_FLOAT) and the VM never inspects runtime
//     type tags during dispatch.
//
//   - Program: a compiled unit holding the constant pool, the local
//     slot count, and the instruction sequence. Programs serialize to
//     the "HYDC" container format (.hydc files) and deserialize through
//     Load, which rejects malformed input with a typed LoadError.
//
//   - Emitter: lowers a type-checked compiler.Program to bytecode in a
//     single post-order walk, producing a Program plus a DebugInfo
//     sidecar that maps instruction indices to source positions.
//
//   - VM: a stack interpreter with a bounded operand stack and a flat
//     local slot array. Runtime errors surface as typed Faults carrying
//     the program counter, and source position when debug info is
//     attached. Execution is cooperatively interruptible.
//
// # Trust Boundary
//
// Load is the validation boundary: opcode validity, constant indices,
// local slots, and jump targets are all checked there. The VM dispatch
// loop assumes a loaded program is structurally sound and indexes into
// its tables without rechecking.
package bytecode
