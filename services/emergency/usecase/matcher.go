package usecase

import (
	"sort"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/internal/utils"
)

// MatchResponders returns the candidates within radiusKm of origin, ordered
// by ascending distance and truncated to maxCount. Candidates without a
// position never appear. Ties keep candidate iteration order (stable sort).
func MatchResponders(origin utils.GeoPoint, radiusKm float64, candidates []*models.User, maxCount int) []models.NearbyResponder {
	matched := make([]models.NearbyResponder, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.HasPosition() {
			continue
		}
		distance := utils.CalculateDistance(origin, utils.GeoPoint{
			Latitude:  *candidate.Latitude,
			Longitude: *candidate.Longitude,
		})
		if distance <= radiusKm {
			matched = append(matched, models.NearbyResponder{
				ID:         candidate.ID,
				DistanceKm: distance,
			})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].DistanceKm < matched[j].DistanceKm
	})

	if maxCount > 0 && len(matched) > maxCount {
		matched = matched[:maxCount]
	}
	return matched
}

// effectiveRadius resolves the search radius: an explicit valid request
// radius wins, then the creator's location-class default, then the urban
// default.
func (uc *EmergencyUC) effectiveRadius(requested *float64, locationClass string) float64 {
	if requested != nil && *requested >= 0 {
		return *requested
	}
	switch locationClass {
	case models.LocationClassSemiUrban:
		return uc.cfg.Emergency.SemiUrbanRadiusKm
	case models.LocationClassRural:
		return uc.cfg.Emergency.RuralRadiusKm
	default:
		return uc.cfg.Emergency.UrbanRadiusKm
	}
}
