package hashtree

import (
	"slices"

	"github.com/gordian-engine/hashtree/htdigest"
	"github.com/gordian-engine/hashtree/htdigest/htblake2b"
	"github.com/gordian-engine/hashtree/htdigest/htsha256"
	"github.com/gordian-engine/hashtree/htdigest/htsha3"
)

// DefaultHasherName names the reference hasher used by [New].
const DefaultHasherName = "sha256"

var hashersByName = map[string]htdigest.Hasher{
	DefaultHasherName: htsha256.Hasher{},
	"keccak256":       htsha3.Keccak256Hasher{},
	"sha3-256":        htsha3.SHA3Hasher{},
	"blake2b-256":     htblake2b.Hasher{},
}

// LookupHasher returns the hasher registered under name.
// It returns [UnknownHasherError] if there is none;
// retrying with the same name will never succeed.
func LookupHasher(name string) (htdigest.Hasher, error) {
	h, ok := hashersByName[name]
	if !ok {
		return nil, UnknownHasherError{Name: name}
	}
	return h, nil
}

// HasherNames returns the sorted names accepted by [LookupHasher].
func HasherNames() []string {
	names := make([]string, 0, len(hashersByName))
	for n := range hashersByName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
