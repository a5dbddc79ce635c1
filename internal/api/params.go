package api

import (
	"net/http"
	"strconv"
)

// intParam reads a non-negative integer query parameter; anything else is 0.
func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
