package spatial

import (
	"math"
	"sort"
	"sync"
)

const earthRadiusMeters = 6371000.0

type (
	// Index keeps a derived (donation id, coordinate) projection of open
	// donations for nearest-neighbor ranking. It is never authoritative:
	// the donation store inserts on creation and removes synchronously on
	// every transition out of Open.
	Index interface {
		Insert(id string, lat, lng float64)
		Remove(id string)
		Nearest(lat, lng float64, limit int, maxRadiusMeters float64) []Match
		Contains(id string) bool
		Len() int
	}

	Match struct {
		ID             string
		DistanceMeters float64
	}

	coordinate struct {
		lat float64
		lng float64
	}

	index struct {
		mu      sync.RWMutex
		entries map[string]coordinate
	}
)

func NewIndex() Index {
	return &index{entries: make(map[string]coordinate)}
}

func (i *index) Insert(id string, lat, lng float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[id] = coordinate{lat: lat, lng: lng}
}

func (i *index) Remove(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, id)
}

func (i *index) Contains(id string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.entries[id]
	return ok
}

func (i *index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Nearest returns up to limit entries ordered by ascending great-circle
// distance from the origin. A maxRadiusMeters <= 0 means unbounded.
func (i *index) Nearest(lat, lng float64, limit int, maxRadiusMeters float64) []Match {
	i.mu.RLock()
	matches := make([]Match, 0, len(i.entries))
	for id, c := range i.entries {
		d := Haversine(lat, lng, c.lat, c.lng)
		if maxRadiusMeters > 0 && d > maxRadiusMeters {
			continue
		}
		matches = append(matches, Match{ID: id, DistanceMeters: d})
	}
	i.mu.RUnlock()

	sort.Slice(matches, func(a, b int) bool {
		if matches[a].DistanceMeters == matches[b].DistanceMeters {
			return matches[a].ID < matches[b].ID
		}
		return matches[a].DistanceMeters < matches[b].DistanceMeters
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Haversine computes the great-circle distance in meters between two
// WGS84 points given in decimal degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
