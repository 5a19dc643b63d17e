package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL appends the database name to a base connection URL,
// keeping any existing query parameters in place. Local connections get
// sslmode=disable unless the caller set a mode.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")

	var url string
	if base, query, ok := strings.Cut(baseURL, "?"); ok {
		url = fmt.Sprintf("%s/%s?%s", base, databaseName, query)
	} else {
		url = fmt.Sprintf("%s/%s", baseURL, databaseName)
	}

	if !strings.Contains(url, "sslmode=") && isLocalHost(url) {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "sslmode=disable"
	}

	return url
}

func isLocalHost(url string) bool {
	return strings.Contains(url, "localhost") || strings.Contains(url, "127.0.0.1")
}
