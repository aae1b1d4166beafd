package pagination

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 25
	// MaxPerPage caps how many rows any listing query can request.
	MaxPerPage = 100
)

// Params holds offset pagination inputs from controllers or services.
// Page is 1-based; a zero Page disables pagination entirely, matching how
// warehouse listings behave when no page is requested.
type Params struct {
	Page    int
	PerPage int
}

// NormalizePerPage enforces the configured default and maximum page sizes.
func NormalizePerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// Window resolves the limit/offset pair for the params. A -1 limit means
// "no limit" to match GORM semantics.
func (p Params) Window() (limit, offset int) {
	if p.Page <= 0 {
		return -1, 0
	}
	limit = NormalizePerPage(p.PerPage)
	offset = (p.Page - 1) * limit
	return limit, offset
}

// HasMore reports whether another page exists after the current window.
func (p Params) HasMore(totalCount int64) bool {
	if p.Page <= 0 {
		return false
	}
	limit, offset := p.Window()
	return totalCount > int64(offset+limit)
}
