package pagination

// Normalize snaps offset onto a page boundary inside [0, total).
// An empty list always normalizes to 0.
func Normalize(offset, pageSize, total int) int {
	pageSize = clampSize(pageSize)
	if total <= 0 || offset <= 0 {
		return 0
	}
	last := ((total - 1) / pageSize) * pageSize
	if offset > last {
		return last
	}
	return (offset / pageSize) * pageSize
}

// Window returns up to pageSize items starting at offset and whether a previous or next page exists.
// hasNext is false exactly when offset+len(visible) reaches the end. An offset past the end shows the last page.
func Window[T any](items []T, offset, pageSize int) (visible []T, hasPrev, hasNext bool) {
	pageSize = clampSize(pageSize)
	if len(items) == 0 {
		return []T{}, false, false
	}

	start := offset
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		start = Normalize(offset, pageSize, len(items))
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], start > 0, end < len(items)
}

// Next advances offset by one page. Moving past the last page is a no-op.
func Next(offset, pageSize, total int) int {
	pageSize = clampSize(pageSize)
	current := Normalize(offset, pageSize, total)
	if current+pageSize < total {
		return current + pageSize
	}
	return current
}

// Prev moves offset back by one page, stopping at zero.
func Prev(offset, pageSize int) int {
	pageSize = clampSize(pageSize)
	if offset <= 0 {
		return 0
	}
	current := (offset / pageSize) * pageSize
	if current-pageSize < 0 {
		return 0
	}
	return current - pageSize
}

// Page returns the 1-based page number for offset.
func Page(offset, pageSize int) int {
	pageSize = clampSize(pageSize)
	if offset < 0 {
		offset = 0
	}
	return offset/pageSize + 1
}

// Pages returns how many pages total items occupy.
func Pages(total, pageSize int) int {
	pageSize = clampSize(pageSize)
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func clampSize(pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	return pageSize
}
