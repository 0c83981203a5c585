// Package main implements a mock CoWIN appointment API for local
// development. It serves generated calendar and day views for any pincode
// or district and can be told to open slots after a number of requests, so
// the alert path can be exercised end to end without hitting the real API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

const (
	sessionsPrefix = "/api/v2/appointment/sessions/public/"
	dateLayout     = "02-01-2006"
)

type center struct {
	CenterID     int       `json:"center_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	DistrictName string    `json:"district_name"`
	Pincode      int       `json:"pincode"`
	FeeType      string    `json:"fee_type"`
	Sessions     []session `json:"sessions"`
}

type session struct {
	SessionID              string   `json:"session_id"`
	Date                   string   `json:"date"`
	AvailableCapacity      int      `json:"available_capacity"`
	AvailableCapacityDose1 int      `json:"available_capacity_dose1"`
	AvailableCapacityDose2 int      `json:"available_capacity_dose2"`
	MinAgeLimit            int      `json:"min_age_limit"`
	Vaccine                string   `json:"vaccine"`
	Slots                  []string `json:"slots"`
}

// daySession is one findBy* entry: the center fields flattened into the
// session.
type daySession struct {
	CenterID     int    `json:"center_id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	DistrictName string `json:"district_name"`
	Pincode      int    `json:"pincode"`
	FeeType      string `json:"fee_type"`
	session
}

// scenario decides what each request sees.
type scenario struct {
	openAfter int64 // requests served closed before slots open; <0 never opens
	failEvery int64 // every Nth request returns 500; 0 disables
	capacity  int
	requests  atomic.Int64
}

// next advances the request counter and reports whether this request should
// fail and whether slots are open.
func (s *scenario) next() (fail, open bool) {
	n := s.requests.Add(1)
	if s.failEvery > 0 && n%s.failEvery == 0 {
		return true, false
	}
	return false, s.openAfter >= 0 && n > s.openAfter
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	openAfter := flag.Int64("open-after", 3, "requests to serve with no capacity before slots open (-1 never)")
	failEvery := flag.Int64("fail-every", 0, "return HTTP 500 on every Nth request (0 disables)")
	capacity := flag.Int("capacity", 12, "available capacity per session once open")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sc := &scenario{openAfter: *openAfter, failEvery: *failEvery, capacity: *capacity}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock CoWIN server", "addr", addr,
		"open_after", sc.openAfter, "fail_every", sc.failEvery)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, sc)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, sc *scenario) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+sessionsPrefix+"calendarByPin", calendarHandler(logger, sc, "pincode"))
	mux.HandleFunc("GET "+sessionsPrefix+"calendarByDistrict", calendarHandler(logger, sc, "district_id"))
	mux.HandleFunc("GET "+sessionsPrefix+"findByPin", dayHandler(logger, sc, "pincode"))
	mux.HandleFunc("GET "+sessionsPrefix+"findByDistrict", dayHandler(logger, sc, "district_id"))
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

// parseQuery validates the location parameter and date the real API
// requires.
func parseQuery(r *http.Request, param string) (code int, date time.Time, err error) {
	code, err = strconv.Atoi(r.URL.Query().Get(param))
	if err != nil || code <= 0 {
		return 0, time.Time{}, fmt.Errorf("invalid %s", param)
	}
	date, err = time.Parse(dateLayout, r.URL.Query().Get("date"))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid date, want DD-MM-YYYY")
	}
	return code, date, nil
}

// buildCenters returns two centers for the location with one session per
// day starting at date.
func buildCenters(code int, date time.Time, days, capacity int) []center {
	pincode := code
	if code < 100000 {
		pincode = 400000 + code // district ids are small
	}

	centers := []center{
		{CenterID: 561660, Name: "Kasturba Hospital", Address: "Sane Guruji Marg", FeeType: "Free"},
		{CenterID: 602331, Name: "Jaslok Hospital", Address: "Pedder Road", FeeType: "Paid"},
	}
	for i := range centers {
		centers[i].DistrictName = "Mumbai"
		centers[i].Pincode = pincode
		for d := range days {
			day := date.AddDate(0, 0, d).Format(dateLayout)
			cap1 := capacity / 2
			centers[i].Sessions = append(centers[i].Sessions, session{
				SessionID:              fmt.Sprintf("%d-%s", centers[i].CenterID, day),
				Date:                   day,
				AvailableCapacity:      capacity,
				AvailableCapacityDose1: cap1,
				AvailableCapacityDose2: capacity - cap1,
				MinAgeLimit:            18 + 27*(i%2),
				Vaccine:                []string{"COVISHIELD", "COVAXIN"}[i%2],
				Slots:                  []string{"09:00AM-11:00AM", "11:00AM-01:00PM"},
			})
		}
	}
	return centers
}

func calendarHandler(logger *slog.Logger, sc *scenario, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, date, capacity, ok := serveCommon(w, r, logger, sc, param)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"centers": buildCenters(code, date, 7, capacity),
		})
	}
}

func dayHandler(logger *slog.Logger, sc *scenario, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, date, capacity, ok := serveCommon(w, r, logger, sc, param)
		if !ok {
			return
		}
		sessions := []daySession{}
		for _, c := range buildCenters(code, date, 1, capacity) {
			sessions = append(sessions, daySession{
				CenterID:     c.CenterID,
				Name:         c.Name,
				Address:      c.Address,
				DistrictName: c.DistrictName,
				Pincode:      c.Pincode,
				FeeType:      c.FeeType,
				session:      c.Sessions[0],
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
	}
}

// serveCommon validates the request and applies the scenario. It writes the
// error response itself and returns ok=false when the handler should stop.
func serveCommon(
	w http.ResponseWriter,
	r *http.Request,
	logger *slog.Logger,
	sc *scenario,
	param string,
) (code int, date time.Time, capacity int, ok bool) {
	code, date, err := parseQuery(r, param)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"errorCode": "APPOIN0018",
			"error":     err.Error(),
		})
		return 0, time.Time{}, 0, false
	}

	fail, open := sc.next()
	if fail {
		logger.Warn("injecting failure", "requests", sc.requests.Load())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
		return 0, time.Time{}, 0, false
	}

	if open {
		capacity = sc.capacity
	}
	logger.Info("serving availability", "path", r.URL.Path, param, code, "open", open)
	return code, date, capacity, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
