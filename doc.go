// Package diffsketch implements an invertible set-reconciliation sketch over
// opaque 64-bit keys.
//
// Two parties holding large, almost-identical sets each build a same-shaped
// Sketch, exchange it, and recover the symmetric difference at a transfer
// cost proportional to the difference, not the sets.
//
// # Basic Usage
//
// Reconciling two sets:
//
//	local, _ := diffsketch.New(1024)
//	for _, k := range myKeys {
//	    local.Insert(k)
//	}
//
//	// remote arrives over the network as a wire record
//	remote, _ := diffsketch.New(1024)
//	if err := remote.ReadSlice(payload, 0, remote.Size(), width); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := local.Subtract(remote); err != nil {
//	    log.Fatal(err)
//	}
//	mine, theirs, outcome := local.Decode()
//	if outcome == diffsketch.Indeterminate {
//	    // sketch too small for the actual difference: retry larger
//	}
//
// Transmitting a sketch:
//
//	width := local.MaxCounterBits() // carry in the protocol envelope
//	payload, err := local.WriteSlice(0, local.Size(), width)
//
// # Package Structure
//
//   - Public API: sketch.go (New, Insert, Remove, Subtract, Clone),
//     decoder.go (DecodeOne, Decode), wire.go (WriteSlice, ReadSlice,
//     PackCounters, UnpackCounters)
//   - Configuration: sketch_options.go (Option, With* functions)
//   - Keys and hashing: key.go (Key, KeyFromHash, HashFromKey, KeyOf),
//     hasher.go (Hasher implementations), mapping.go (bucket indexing)
//   - Bulk loading: parallel.go (InsertAll)
//   - Persistence: sketchfile.go (Save, Load), fadvise_*.go (OS hints)
//   - Bit packing: internal/bitio (MSB-first bit streams)
package diffsketch
