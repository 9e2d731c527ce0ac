// Package geoip maps client addresses to ISO country codes using a local
// MaxMind database. The result only enriches request logs; when no database
// is configured every request proceeds without a country.
package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// CountryResolver answers country lookups for client addresses.
type CountryResolver interface {
	CountryCode(addr string) (string, error)
	Close() error
}

type resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the database at path. An empty path means the feature is
// disabled and both return values are nil.
func NewResolver(path string) (CountryResolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open %s: %w", path, err)
	}
	return &resolver{reader: reader}, nil
}

// CountryCode resolves addr to an ISO 3166-1 code. addr may carry a port,
// as http.Request.RemoteAddr does. An address the database does not know
// yields an empty code without an error.
func (r *resolver) CountryCode(addr string) (string, error) {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return "", fmt.Errorf("geoip: not an ip address: %q", addr)
	}
	record, err := r.reader.Country(ip)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return record.Country.IsoCode, nil
}

func (r *resolver) Close() error {
	return r.reader.Close()
}
