package fact

// FNV-1a 64-bit constants. The same function runs in the hot path (receipt
// hashes) and in the audit path (chain entry hashes), so the two sides can
// be compared bit-for-bit.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for algorithm migration without colliding with v1 identifiers.
const (
	DomainTerm = "veritick/term/v1"
	DomainSpan = "veritick/span/v1"
)

// HashBytes computes the FNV-1a 64 hash of data.
func HashBytes(data []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	return h
}

// HashWords computes the FNV-1a 64 hash of a word sequence, feeding each
// word in as 8 little-endian bytes. This is the projection hash: a receipt's
// ResultHash is always HashWords over the operation's projected lanes.
func HashWords(words []uint64) uint64 {
	h := uint64(fnvOffset64)
	for _, w := range words {
		for i := 0; i < 8; i++ {
			h ^= w & 0xFF
			h *= fnvPrime64
			w >>= 8
		}
	}
	return h
}

// HashTerm computes the domain-separated identifier hash for a term string.
// The NUL separator prevents domain/data boundary ambiguity.
func HashTerm(domain, term string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(domain); i++ {
		h ^= uint64(domain[i])
		h *= fnvPrime64
	}
	h ^= 0x00
	h *= fnvPrime64
	for i := 0; i < len(term); i++ {
		h ^= uint64(term[i])
		h *= fnvPrime64
	}
	return h
}
