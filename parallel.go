package diffsketch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// minParallelKeys is the smallest key count worth sharding; below it the
// goroutine and merge overhead exceeds the hashing work.
const minParallelKeys = 4096

// InsertAll inserts every key in keys, sharding the work across up to
// workers goroutines. Each worker fills a private same-shaped sketch and
// the shards are merged into s afterwards; since insertion is a
// commutative-group update, the result is identical to sequential insertion
// in any order.
//
// workers <= 1, or a keys slice too small to be worth sharding, falls back
// to a plain sequential loop. The context only interrupts the sharded path;
// on cancellation s is left unmodified.
func (s *Sketch) InsertAll(ctx context.Context, keys []Key, workers int) error {
	if workers <= 1 || len(keys) < minParallelKeys {
		for _, k := range keys {
			s.Insert(k)
		}
		return nil
	}
	if workers > len(keys) {
		workers = len(keys)
	}

	shards := make([]*Sketch, 0, workers)
	g, ctx := errgroup.WithContext(ctx)
	per := (len(keys) + workers - 1) / workers
	// Ceiling division can overshoot: with per keys each, fewer than
	// workers shards may cover the slice, so spawn only while keys remain.
	for lo := 0; lo < len(keys); lo += per {
		hi := min(lo+per, len(keys))
		shard := &Sketch{
			buckets: make([]bucket, len(s.buckets)),
			hashNum: s.hashNum,
			hasher:  s.hasher,
			idx:     make([]uint32, s.hashNum),
		}
		shards = append(shards, shard)
		g.Go(func() error {
			for i, k := range keys[lo:hi] {
				// Cancellation check amortized across the batch.
				if i&1023 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				shard.Insert(k)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, shard := range shards {
		s.merge(shard)
	}
	return nil
}
