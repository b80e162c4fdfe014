package http

import (
	"net/url"
	"strconv"
)

func optionalQuery(query url.Values, key string) *string {
	if v := query.Get(key); v != "" {
		return &v
	}
	return nil
}

// intQuery falls back to def when the value is missing or not a positive
// integer.
func intQuery(query url.Values, key string, def int) int {
	if v := query.Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func boolQuery(query url.Values, key string) *bool {
	v := query.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
