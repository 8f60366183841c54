package http

import (
	"net/http"

	"carlog/internal/core"
	"carlog/internal/log"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.journal.ListRecords(r.Context(), pathValue(r, "id"))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	if records == nil {
		records = []core.MaintenanceRecord{}
	}
	NewJSONResponse().Body(records).Write(w)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec core.MaintenanceRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		decodeStatus(err).Write(w)
		return
	}
	rec = sanitizeRecord(rec)
	rec.ID = ""
	if rec.CarID == "" {
		BadRequestError("carId is required").Write(w)
		return
	}

	saved, err := s.journal.CreateRecord(r.Context(), rec)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	s.recordWritten(r, log.OpCreate, saved)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/records/"+saved.ID).
		Body(saved).
		Write(w)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.journal.GetRecord(r.Context(), pathValue(r, "id"))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(rec).Write(w)
}

// handleUpdateRecord replaces a record. A carId in the body is ignored: a
// record stays with the car it was created for.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var rec core.MaintenanceRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		decodeStatus(err).Write(w)
		return
	}
	rec = sanitizeRecord(rec)
	rec.ID = pathValue(r, "id")

	updated, err := s.journal.UpdateRecord(r.Context(), rec)
	if err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	s.recordWritten(r, log.OpUpdate, updated)
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := pathValue(r, "id")
	carID, err := s.journal.DeleteRecord(r.Context(), id)
	if err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	s.appMetrics.recordsWritten.Add(1)
	s.invalidateCar(r.Context(), carID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Maintenance record deleted",
		log.FieldRecordID, id, log.FieldCarID, carID)
	NoContent().Write(w)
}

func (s *Server) recordWritten(r *http.Request, op string, rec core.MaintenanceRecord) {
	s.appMetrics.recordsWritten.Add(1)
	s.invalidateCar(r.Context(), rec.CarID)
	s.events.LogRecordSaved(r.Context(), op, rec.ID, rec.CarID, rec.EventType.String(), int64(rec.MileageKm), rec.TotalCost.Cents)
}
