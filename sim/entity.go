// Defines the Entity struct that models a vehicle passing through the workshop.
// Tracks the vehicle's category, arrival time and lifecycle state.

package sim

import (
	"fmt"
)

// EntityState represents the lifecycle state of an entity.
type EntityState string

const (
	StateWaiting   EntityState = "waiting"
	StateInService EntityState = "in_service"
	StateDeparted  EntityState = "departed"
)

// Category is a vehicle class with its service rate (expected services per minute).
type Category struct {
	Name string  `yaml:"name" json:"name"`
	Rate float64 `yaml:"rate" json:"rate"`
}

// Entity models a single vehicle's lifecycle in the simulation.
type Entity struct {
	ID          string      // Unique identifier, vehicle_<n>
	Category    string      // Vehicle class, one of the configured categories
	ArrivalTime int64       // Minute at which the vehicle joined the waiting line
	State       EntityState // waiting, in_service, departed

	ServiceStart    int64 // Minute the vehicle entered the bay
	ServiceDuration int64 // Minutes the bay is occupied by this vehicle
}

// NewEntity creates a waiting vehicle that arrived at the given time, with its
// category drawn uniformly from categories. categories must be non-empty.
func NewEntity(id string, categories []Category, arrival int64, src Source) *Entity {
	c := categories[src.Pick(len(categories))]
	return &Entity{
		ID:          id,
		Category:    c.Name,
		ArrivalTime: arrival,
		State:       StateWaiting,
	}
}

// Wait returns the time spent in the waiting line. Only meaningful once the
// entity has entered service.
func (e *Entity) Wait() int64 {
	return e.ServiceStart - e.ArrivalTime
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity: (ID: %s, Category: %s, State: %s, ArrivalTime: %d)", e.ID, e.Category, e.State, e.ArrivalTime)
}
