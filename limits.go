package sqlpager

const (
	// DefaultPageSize rows per fetch when the caller has no preference.
	DefaultPageSize = 1000
	MaxPageSize     = 100000
)

// IsNormalizedPageSizeMax clamps size into [1, maxSize]. The second return
// value reports whether size was already acceptable as-is.
func IsNormalizedPageSizeMax(size int, maxSize int) (int, bool) {
	if size <= 0 {
		return DefaultPageSize, false
	} else if size > maxSize {
		return maxSize, false
	}

	return size, true
}

func NormalizePageSizeMax(size int, maxSize int) int {
	ret, _ := IsNormalizedPageSizeMax(size, maxSize)
	return ret
}

// NormalizePageSize is meant for presentation inputs. QueryPaginator itself
// rejects sizes below 1 instead of normalizing them.
func NormalizePageSize(size int) int {
	return NormalizePageSizeMax(size, MaxPageSize)
}
