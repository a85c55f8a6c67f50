package descriptor

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Hashing runs on every set and map probe, so digests are reused.
var digestPool = sync.Pool{
	New: func() any {
		return xxhash.New()
	},
}

func getDigest() *xxhash.Digest {
	d := digestPool.Get().(*xxhash.Digest)
	d.Reset()
	return d
}

func putDigest(d *xxhash.Digest) {
	if d == nil {
		return
	}
	digestPool.Put(d)
}
