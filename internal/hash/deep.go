package hash

import "hash/maphash"

// deepHashSeed is process-global so two DeepHash calls within the same
// process are comparable. DeepHash only requires within-process stability
// (it backs batch_hashes deduplication within one DSE run), unlike
// SemanticHash which must be stable across processes.
var deepHashSeed = maphash.MakeSeed()

// DeepHash is the lightweight variant used on DSE hot paths (deduplicating
// candidate settings within and across the batches of one DSE run). It reuses the same canonicalization
// as SemanticHash but folds the result through hash/maphash instead of
// SHA3-256 — no cryptographic strength is needed, only speed and a good
// collision rate over the canonicalized byte string. No third-party
// non-cryptographic hash is present anywhere in the retrieved example
// pack, so this one leaf stays on the standard library (see DESIGN.md).
func DeepHash(v any) uint64 {
	var buf []byte
	buf = appendCanonical(buf, v)
	var h maphash.Hash
	h.SetSeed(deepHashSeed)
	_, _ = h.Write(buf)
	return h.Sum64()
}
