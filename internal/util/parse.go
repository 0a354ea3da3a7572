package util

import "strconv"

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParsePagination reads limit/offset query values with a cap on limit.
func ParsePagination(limitStr, offsetStr string, defaultLimit, maxLimit int) (limit, offset int) {
	limit = ParseInt(limitStr, defaultLimit)
	offset = ParseInt(offsetStr, 0)
	if limit > maxLimit {
		limit = maxLimit
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
