package database

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotInitialized is returned when a request arrives while the handle has
// no live connection.
var ErrNotInitialized = errors.New("database connection not initialized")

// codeNamespaceNotFound is the server error code for "ns not found".
const codeNamespaceNotFound = 26

// CollectionNotFoundError reports a collection missing from the connected database.
type CollectionNotFoundError struct {
	Name string
}

func (e *CollectionNotFoundError) Error() string {
	return fmt.Sprintf("collection not found: %s", e.Name)
}

// IsNamespaceNotFound reports whether err is the server's namespace-not-found condition.
func IsNamespaceNotFound(err error) bool {
	if err == nil {
		return false
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeNamespaceNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "ns not found")
}
