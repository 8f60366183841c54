package http

import (
	"net/http"
	"strconv"

	"carlog/internal/core"
	"carlog/internal/log"
	"carlog/internal/services"
)

// nextServiceResponse is the next-service payload: the projection, its
// urgency and the interval it was derived from.
type nextServiceResponse struct {
	core.NextServiceInfo
	Status   services.ServiceStatus `json:"status"`
	Interval core.ServiceInterval   `json:"interval"`
}

func (s *Server) handleListIntervals(w http.ResponseWriter, r *http.Request) {
	entries, err := s.journal.ServiceIntervals(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(entries).Write(w)
}

func (s *Server) handleIntervalForMake(w http.ResponseWriter, r *http.Request) {
	entry, err := s.journal.ServiceIntervalForMake(r.Context(), pathValue(r, "make"))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(entry).Write(w)
}

// handleNextService answers 204 when the car has no planned service to
// project from.
func (s *Server) handleNextService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carID := pathValue(r, "id")
	now := s.now()
	key := carCachePrefix(carID) + "next:" + now.UTC().Format(core.DateLayout)

	if cached, ok := s.nextCache.Get(key); ok {
		s.appMetrics.cacheHits.Add(1)
		s.writeNextService(w, cached)
		return
	}
	s.appMetrics.cacheMisses.Add(1)

	info, ok, err := s.journal.NextService(ctx, carID, now)
	if err != nil {
		s.respondError(w, r, log.OpPredict, err)
		return
	}
	var resp nextServiceResponse
	if ok {
		interval, err := s.journal.ResolvedInterval(ctx, carID)
		if err != nil {
			s.respondError(w, r, log.OpPredict, err)
			return
		}
		resp = nextServiceResponse{
			NextServiceInfo: info,
			Status:          services.ClassifyService(info),
			Interval:        interval,
		}
	}
	s.nextCache.Set(key, resp)
	s.writeNextService(w, resp)
}

// writeNextService treats a response without a status as "no prediction".
func (s *Server) writeNextService(w http.ResponseWriter, resp nextServiceResponse) {
	if resp.Status == "" {
		NoContent().Write(w)
		return
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	months, err := parseMonths(r.URL.Query(), s.statsMonths)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	carID := pathValue(r, "id")
	now := s.now()
	key := carCachePrefix(carID) + "stats:" + strconv.Itoa(months) + ":" + now.UTC().Format(core.DateLayout)

	if cached, ok := s.statsCache.Get(key); ok {
		s.appMetrics.cacheHits.Add(1)
		NewJSONResponse().Body(cached).Write(w)
		return
	}
	s.appMetrics.cacheMisses.Add(1)

	summary, err := s.journal.Stats(r.Context(), carID, months, now)
	if err != nil {
		s.respondError(w, r, log.OpStats, err)
		return
	}
	s.statsCache.Set(key, summary)
	NewJSONResponse().Body(summary).Write(w)
}
