package geo

import (
	"errors"
	"math"
)

// EarthRadiusMeters is the mean earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

var (
	ErrInvalidCoordinate = errors.New("coordinate must be finite, latitude in [-90, 90] and longitude in [-180, 180]")
	ErrNoOffices         = errors.New("no office location configured")
)

// Coordinate is a WGS-84 point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) ||
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return ErrInvalidCoordinate
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Office is a named location with an admission radius.
type Office struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	RadiusMeters float64 `json:"radius_meters" yaml:"radius_meters"`
}

func (o Office) Coordinate() Coordinate {
	return Coordinate{Latitude: o.Latitude, Longitude: o.Longitude}
}

// DistanceMeters menghitung jarak great-circle antara dua titik dalam meter (haversine).
func DistanceMeters(a, b Coordinate) float64 {
	const toRad = math.Pi / 180.0

	lat1Rad := a.Latitude * toRad
	lat2Rad := b.Latitude * toRad
	dLat := (b.Latitude - a.Latitude) * toRad
	dLon := (b.Longitude - a.Longitude) * toRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// IsWithinAnyOffice reports whether point lies inside the radius of at least one office.
func IsWithinAnyOffice(point Coordinate, offices []Office) bool {
	for _, office := range offices {
		if DistanceMeters(point, office.Coordinate()) <= office.RadiusMeters {
			return true
		}
	}
	return false
}

// Nearest is the closest office to a point and its distance.
type Nearest struct {
	Office         Office
	DistanceMeters float64
}

// Within reports whether the nearest office admits the point.
func (n Nearest) Within() bool {
	return n.DistanceMeters <= n.Office.RadiusMeters
}

// NearestOffice scans every office; ties keep the first one in list order.
func NearestOffice(point Coordinate, offices []Office) (Nearest, error) {
	if len(offices) == 0 {
		return Nearest{}, ErrNoOffices
	}

	nearest := Nearest{Office: offices[0], DistanceMeters: math.Inf(1)}
	for _, office := range offices {
		d := DistanceMeters(point, office.Coordinate())
		if d < nearest.DistanceMeters {
			nearest = Nearest{Office: office, DistanceMeters: d}
		}
	}
	return nearest, nil
}
