package pagination

const (
	// DefaultLimit applies when a caller asks for no page size.
	DefaultLimit = 20
	// MaxLimit caps every listing.
	MaxLimit = 100
)

// Clamp normalizes limit and offset into the bounds every listing uses.
func Clamp(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
