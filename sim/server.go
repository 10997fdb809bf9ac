package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Server is the workshop's single service bay. It holds at most one vehicle.
type Server struct {
	rates           map[string]float64 // service rate per category
	occupant        *Entity
	serviceDuration int64
}

// NewServer creates an idle bay that serves the given categories.
func NewServer(categories []Category) *Server {
	rates := make(map[string]float64, len(categories))
	for _, c := range categories {
		rates[c.Name] = c.Rate
	}
	return &Server{rates: rates}
}

// IsBusy reports whether a vehicle occupies the bay.
func (s *Server) IsBusy() bool {
	return s.occupant != nil
}

// Occupant returns the vehicle in service, or nil when idle.
func (s *Server) Occupant() *Entity {
	return s.occupant
}

// ServiceDuration returns the duration drawn for the current occupant.
func (s *Server) ServiceDuration() int64 {
	return s.serviceDuration
}

// BeginService moves e into the bay at time now and returns its service
// duration, drawn from the exponential distribution of e's category.
// Callers must check IsBusy first.
func (s *Server) BeginService(e *Entity, now int64, src Source) int64 {
	if s.occupant != nil {
		panic(fmt.Sprintf("BeginService: bay already serving %s", s.occupant.ID))
	}
	if e == nil {
		panic("BeginService: entity must not be nil")
	}
	rate, ok := s.rates[e.Category]
	if !ok {
		panic(fmt.Sprintf("BeginService: no service rate for category %q", e.Category))
	}

	d := Interval(src.Service(rate))
	s.occupant = e
	s.serviceDuration = d

	e.State = StateInService
	e.ServiceStart = now
	e.ServiceDuration = d
	logrus.Debugf("[t %07d] %s (%s) enters the bay for %d min", now, e.ID, e.Category, d)
	return d
}

// EndService releases the bay and returns the vehicle that was in it.
func (s *Server) EndService() *Entity {
	if s.occupant == nil {
		panic("EndService: bay is idle")
	}
	e := s.occupant
	s.occupant = nil
	s.serviceDuration = 0
	e.State = StateDeparted
	return e
}
