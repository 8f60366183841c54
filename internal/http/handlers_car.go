package http

import (
	"net/http"

	"carlog/internal/core"
	"carlog/internal/log"
)

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := s.journal.ListCars(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	if cars == nil {
		cars = []core.CarProfile{}
	}
	NewJSONResponse().Body(cars).Write(w)
}

func (s *Server) handleCreateCar(w http.ResponseWriter, r *http.Request) {
	var car core.CarProfile
	if err := decodeJSON(w, r, &car); err != nil {
		decodeStatus(err).Write(w)
		return
	}
	car.ID = ""

	created, err := s.journal.CreateCar(r.Context(), sanitizeCar(car))
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Car created",
		log.FieldCarID, created.ID, "make", created.Make, "model", created.Model)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/cars/"+created.ID).
		Body(created).
		Write(w)
}

func (s *Server) handleGetCar(w http.ResponseWriter, r *http.Request) {
	car, err := s.journal.GetCar(r.Context(), pathValue(r, "id"))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(car).Write(w)
}

// handleUpdateCar replaces a car profile. Interval overrides change the
// next-service projection, so cached analytics are dropped.
func (s *Server) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	var car core.CarProfile
	if err := decodeJSON(w, r, &car); err != nil {
		decodeStatus(err).Write(w)
		return
	}
	car.ID = pathValue(r, "id")

	updated, err := s.journal.UpdateCar(r.Context(), sanitizeCar(car))
	if err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	s.invalidateCar(r.Context(), updated.ID)
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	id := pathValue(r, "id")
	if err := s.journal.DeleteCar(r.Context(), id); err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	s.invalidateCar(r.Context(), id)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Car deleted", log.FieldCarID, id)
	NoContent().Write(w)
}
