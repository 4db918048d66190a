package database

import (
	"fmt"
	"net/url"
	"strings"
)

// SchemaSuffix is the final path segment of every schema resource URI.
const SchemaSuffix = "schema"

// ConnInfo is what the server needs to know about a connection string
// beyond handing it to the driver.
type ConnInfo struct {
	Database string // first path segment of the connection string
	Hosts    string // host list as written, e.g. "a:27017,b:27017"
	base     url.URL
}

// ParseConnString extracts the database name and resource base from a
// MongoDB connection string of the form scheme://[user:pass@]hosts/<db>[?opts].
func ParseConnString(uri string) (ConnInfo, error) {
	if uri == "" {
		return ConnInfo{}, fmt.Errorf("connection string is empty")
	}

	u, err := url.Parse(uri)
	if err != nil {
		return ConnInfo{}, fmt.Errorf("invalid connection string: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return ConnInfo{}, fmt.Errorf("invalid connection string scheme %q: expected mongodb:// or mongodb+srv://", u.Scheme)
	}
	if u.Host == "" {
		return ConnInfo{}, fmt.Errorf("invalid connection string: no host")
	}

	dbName, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if dbName == "" {
		return ConnInfo{}, fmt.Errorf("could not determine database name from connection string; include it (e.g., mongodb://host/dbName)")
	}

	return ConnInfo{
		Database: dbName,
		Hosts:    u.Host,
		base: url.URL{
			Scheme: "mongodb",
			Host:   u.Host,
			Path:   "/" + dbName + "/",
		},
	}, nil
}

// BaseURI is the credential-free prefix shared by all schema resources,
// always with the mongodb scheme and a trailing slash.
func (c ConnInfo) BaseURI() string {
	b := c.base
	return b.String()
}

// SchemaURI builds the schema resource URI for a collection.
func (c ConnInfo) SchemaURI(collection string) string {
	u := c.base
	u.Path = u.Path + collection + "/" + SchemaSuffix
	return u.String()
}
