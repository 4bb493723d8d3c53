// Bench measures diffsketch reconciliation: decode success rate, wire cost
// and throughput for a given set size and difference size across a range of
// sketch sizes.
//
// Usage:
//
//	go run ./cmd/bench -shared 1000000 -diff 1000
//
// Flags:
//
//	-shared    Keys held by both sides (default: 1,000,000)
//	-diff      Symmetric difference size, split evenly (default: 1,000)
//	-sizes     Comma-separated sketch sizes; 0 = sweep around 1.5x-4x diff
//	-hashnum   Buckets per key (default: 4)
//	-hasher    Checksum: xxhash, murmur3 or siphash (default: xxhash)
//	-trials    Trials per sketch size (default: 10)
//	-workers   Parallel insert workers (default: GOMAXPROCS)
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/tamirms/diffsketch"
)

func parseSizes(s string, diff int) []int {
	if s == "" || s == "0" {
		base := diff + diff/2
		return []int{base, diff * 2, diff * 3, diff * 4}
	}
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "invalid sketch size %q\n", part)
			os.Exit(1)
		}
		sizes = append(sizes, n)
	}
	return sizes
}

func pickHasher(name string, rng *rand.Rand) diffsketch.Hasher {
	switch name {
	case "xxhash":
		return diffsketch.XXHasher{}
	case "murmur3":
		return diffsketch.MurmurHasher{Seed: uint32(rng.Uint64())}
	case "siphash":
		return diffsketch.SipHasher{K0: rng.Uint64(), K1: rng.Uint64()}
	default:
		fmt.Fprintf(os.Stderr, "unknown hasher %q\n", name)
		os.Exit(1)
		return nil
	}
}

func main() {
	sharedFlag := flag.Int("shared", 1_000_000, "keys held by both sides")
	diffFlag := flag.Int("diff", 1_000, "symmetric difference size")
	sizesFlag := flag.String("sizes", "0", "comma-separated sketch sizes (0 = auto sweep)")
	hashNumFlag := flag.Int("hashnum", 4, "buckets per key")
	hasherFlag := flag.String("hasher", "xxhash", "checksum: xxhash, murmur3 or siphash")
	trialsFlag := flag.Int("trials", 10, "trials per sketch size")
	workersFlag := flag.Int("workers", runtime.GOMAXPROCS(0), "parallel insert workers")
	flag.Parse()

	shared := *sharedFlag
	diff := *diffFlag
	sizes := parseSizes(*sizesFlag, diff)
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9E3779B97F4A7C15))
	hasher := pickHasher(*hasherFlag, rng)

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Shared keys:  %d\n", shared)
	fmt.Printf("  Difference:   %d (%d per side)\n", diff, diff/2)
	fmt.Printf("  Hash count:   %d\n", *hashNumFlag)
	fmt.Printf("  Hasher:       %s\n", *hasherFlag)
	fmt.Printf("  Workers:      %d\n", *workersFlag)
	fmt.Println()
	fmt.Printf("%10s  %8s  %10s  %12s  %10s\n", "size", "success", "wire", "build", "decode")

	for _, size := range sizes {
		var (
			successes   int
			wireBytes   int
			buildTotal  time.Duration
			decodeTotal time.Duration
		)
		for trial := 0; trial < *trialsFlag; trial++ {
			keys := distinctKeys(rng, shared+diff)
			sharedKeys := keys[:shared]
			onlyA := keys[shared : shared+diff/2]
			onlyB := keys[shared+diff/2:]

			buildStart := time.Now()
			a := mustSketch(size, *hashNumFlag, hasher)
			b := mustSketch(size, *hashNumFlag, hasher)
			insertAll(a, append(append([]diffsketch.Key(nil), sharedKeys...), onlyA...), *workersFlag)
			insertAll(b, append(append([]diffsketch.Key(nil), sharedKeys...), onlyB...), *workersFlag)
			buildTotal += time.Since(buildStart)

			width := b.MaxCounterBits()
			payload, err := b.WriteSlice(0, b.Size(), width)
			if err != nil {
				fmt.Fprintf(os.Stderr, "WriteSlice: %v\n", err)
				os.Exit(1)
			}
			wireBytes = len(payload)

			decodeStart := time.Now()
			if err := a.Subtract(b); err != nil {
				fmt.Fprintf(os.Stderr, "Subtract: %v\n", err)
				os.Exit(1)
			}
			local, remote, outcome := a.Decode()
			decodeTotal += time.Since(decodeStart)

			if outcome == diffsketch.Done && len(local) == len(onlyA) && len(remote) == len(onlyB) {
				successes++
			}
		}
		fmt.Printf("%10d  %7.1f%%  %9dB  %12s  %10s\n",
			size,
			100*float64(successes)/float64(*trialsFlag),
			wireBytes,
			(buildTotal / time.Duration(*trialsFlag)).Round(time.Microsecond),
			(decodeTotal / time.Duration(*trialsFlag)).Round(time.Microsecond))
	}
}

func mustSketch(size, hashNum int, h diffsketch.Hasher) *diffsketch.Sketch {
	s, err := diffsketch.New(size, diffsketch.WithHashCount(hashNum), diffsketch.WithHasher(h))
	if err != nil {
		fmt.Fprintf(os.Stderr, "New(%d): %v\n", size, err)
		os.Exit(1)
	}
	return s
}

func insertAll(s *diffsketch.Sketch, keys []diffsketch.Key, workers int) {
	if err := s.InsertAll(context.Background(), keys, workers); err != nil {
		fmt.Fprintf(os.Stderr, "InsertAll: %v\n", err)
		os.Exit(1)
	}
}

func distinctKeys(rng *rand.Rand, n int) []diffsketch.Key {
	seen := make(map[diffsketch.Key]struct{}, n)
	keys := make([]diffsketch.Key, 0, n)
	for len(keys) < n {
		k := diffsketch.Key(rng.Uint64())
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
