package types

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// Coords is a point in decimal degrees
type Coords struct {
	Latitude  float64 `json:"latitude" example:"37.8"`
	Longitude float64 `json:"longitude" example:"-122.47"`
}

func NewCoords(latitude, longitude float64) Coords {
	return Coords{
		Latitude:  latitude,
		Longitude: longitude,
	}
}

// Validate checks that both components are within range. NaN is out of range.
func (c Coords) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("%w: got %v", ErrInvalidLatitude, c.Latitude)
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return fmt.Errorf("%w: got %v", ErrInvalidLongitude, c.Longitude)
	}
	return nil
}

// PathSegment renders the coordinate as "lat,lon" using the shortest decimal
// form of each component, e.g. "37.8,-122.47".
func (c Coords) PathSegment() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

func (c Coords) String() string {
	return c.PathSegment()
}
