package db

import (
	"strconv"
	"strings"
)

// Rebind rewrites '?' placeholders to the driver's style. Queries passed
// here must not contain literal question marks.
func Rebind(driver Driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RandomFunc is the SQL function used for ORDER BY random sampling.
func RandomFunc(driver Driver) string {
	if driver == DriverMySQL {
		return "RAND()"
	}
	return "RANDOM()"
}
