package services

import (
	"math"

	"github.com/mmcloughlin/geohash"

	"costar-map/models"
)

const (
	maxZoom      = 18
	minPrecision = 1
	maxPrecision = 8
)

// PrecisionForZoom maps a web-map zoom level (0..18) onto a geohash length.
// Higher zoom means smaller cells.
func PrecisionForZoom(zoom int) uint {
	if zoom < 0 {
		zoom = 0
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	return uint(minPrecision + zoom*(maxPrecision-minPrecision)/maxZoom)
}

// Cluster groups listings sharing a geohash cell of the given precision.
// Clusters come back in order of first appearance, positioned at the mean
// coordinate of their members. Listings without coordinates are skipped.
func Cluster(listings []*models.Listing, precision uint) []models.Cluster {
	if precision < minPrecision {
		precision = minPrecision
	}

	index := make(map[string]int)
	clusters := make([]models.Cluster, 0)
	for _, l := range listings {
		if !l.HasCoordinates() {
			continue
		}

		hash := geohash.EncodeWithPrecision(l.Latitude, l.Longitude, precision)
		i, ok := index[hash]
		if !ok {
			i = len(clusters)
			index[hash] = i
			clusters = append(clusters, models.Cluster{Geohash: hash})
		}

		c := &clusters[i]
		c.Count++
		// running mean
		c.Latitude += (l.Latitude - c.Latitude) / float64(c.Count)
		c.Longitude += (l.Longitude - c.Longitude) / float64(c.Count)
	}

	for i := range clusters {
		clusters[i].Latitude = round6(clusters[i].Latitude)
		clusters[i].Longitude = round6(clusters[i].Longitude)
	}
	return clusters
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
