package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"eventsignup/internal/cache"
	"eventsignup/internal/directory"
	"eventsignup/internal/validation"
)

// ErrZipNotFound indicates no directory address carries the zip code
var ErrZipNotFound = errors.New("zip code not found")

const zipCacheTTL = 24 * time.Hour

// zipDirectory is the one directory lookup the zip flow needs
type zipDirectory interface {
	FindAddressesByZip(ctx context.Context, zip string) ([]directory.Record[directory.AddressAttributes], error)
}

// ZipInfo is the city and state resolved for a zip code
type ZipInfo struct {
	City  string `json:"City"`
	State string `json:"State"`
}

// ZipService resolves zip codes to city/state by majority vote over the
// addresses already in the directory. Results are cached; zip geography
// does not change.
type ZipService struct {
	directory zipDirectory
	cache     cache.Cache
}

// NewZipService creates a new zip service
func NewZipService(dir zipDirectory, c cache.Cache) *ZipService {
	return &ZipService{directory: dir, cache: c}
}

// Lookup resolves a zip code to its city and state
func (s *ZipService) Lookup(ctx context.Context, zip string) (*ZipInfo, error) {
	if err := validation.ValidateZip(zip); err != nil {
		return nil, err
	}

	cacheKey := "zip:" + zip
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var info ZipInfo
		if err := json.Unmarshal([]byte(cached), &info); err == nil {
			return &info, nil
		}
	}

	addresses, err := s.directory.FindAddressesByZip(ctx, zip)
	if err != nil {
		return nil, fmt.Errorf("failed to look up zip: %w", err)
	}
	if len(addresses) == 0 {
		return nil, ErrZipNotFound
	}

	// Addresses are user-entered, so the odd typo shows up. The most
	// common city/state pair wins.
	votes := make(map[ZipInfo]int)
	for i := range addresses {
		attrs := addresses[i].Attributes
		if attrs.City == "" || attrs.State == "" {
			continue
		}
		votes[ZipInfo{City: attrs.City, State: attrs.State}]++
	}
	if len(votes) == 0 {
		return nil, ErrZipNotFound
	}

	var best ZipInfo
	bestCount := 0
	for info, count := range votes {
		if count > bestCount {
			best = info
			bestCount = count
		}
	}

	if encoded, err := json.Marshal(best); err == nil {
		s.cache.Set(ctx, cacheKey, string(encoded), zipCacheTTL)
	} else {
		log.Printf("Failed to cache zip %s: %v", zip, err)
	}
	return &best, nil
}
