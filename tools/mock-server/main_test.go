package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/donaldgifford/vaccine-alert/internal/cowin"
	"github.com/donaldgifford/vaccine-alert/internal/engine"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testQuery(kind domain.LocationKind, code string) domain.LocationQuery {
	return domain.LocationQuery{
		Kind: kind,
		Code: code,
		Date: time.Date(2021, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestScenario_OpenAfter(t *testing.T) {
	sc := &scenario{openAfter: 2}

	var got []bool
	for range 4 {
		_, open := sc.next()
		got = append(got, open)
	}

	want := []bool{false, false, true, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d open=%v, want %v", i+1, got[i], want[i])
		}
	}
}

func TestScenario_NeverOpens(t *testing.T) {
	sc := &scenario{openAfter: -1}
	for i := range 5 {
		if _, open := sc.next(); open {
			t.Fatalf("request %d open, want closed", i+1)
		}
	}
}

func TestScenario_FailEvery(t *testing.T) {
	sc := &scenario{openAfter: 0, failEvery: 3}
	for i := 1; i <= 6; i++ {
		fail, open := sc.next()
		wantFail := i%3 == 0
		if fail != wantFail {
			t.Errorf("request %d fail=%v, want %v", i, fail, wantFail)
		}
		if fail && open {
			t.Errorf("request %d failed and open", i)
		}
	}
}

func TestCalendarHandler_BadRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "missing pincode", query: "?date=10-05-2021"},
		{name: "non numeric pincode", query: "?pincode=abc&date=10-05-2021"},
		{name: "bad date", query: "?pincode=400001&date=2021-05-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &scenario{openAfter: 0, capacity: 5}
			mux := newMux(testLogger(), sc)

			req := httptest.NewRequest(http.MethodGet, sessionsPrefix+"calendarByPin"+tt.query, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
			}
			if sc.requests.Load() != 0 {
				t.Errorf("bad requests should not advance the scenario")
			}
		})
	}
}

func TestCalendarHandler_Shape(t *testing.T) {
	sc := &scenario{openAfter: 0, capacity: 8}
	mux := newMux(testLogger(), sc)

	req := httptest.NewRequest(http.MethodGet,
		sessionsPrefix+"calendarByPin?pincode=400001&date=10-05-2021", http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Centers []center `json:"centers"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Centers) != 2 {
		t.Fatalf("centers=%d, want 2", len(resp.Centers))
	}
	for _, c := range resp.Centers {
		if len(c.Sessions) != 7 {
			t.Errorf("%s sessions=%d, want 7", c.Name, len(c.Sessions))
		}
		if c.Pincode != 400001 {
			t.Errorf("%s pincode=%d, want 400001", c.Name, c.Pincode)
		}
		if c.Sessions[0].Date != "10-05-2021" || c.Sessions[6].Date != "16-05-2021" {
			t.Errorf("%s dates %s..%s", c.Name, c.Sessions[0].Date, c.Sessions[6].Date)
		}
	}
}

func TestMockServer_CowinClient(t *testing.T) {
	tests := []struct {
		name string
		mode cowin.Mode
		q    domain.LocationQuery
	}{
		{name: "calendar by pincode", mode: cowin.ModeCalendar, q: testQuery(domain.LocationPincode, "400001")},
		{name: "calendar by district", mode: cowin.ModeCalendar, q: testQuery(domain.LocationDistrict, "395")},
		{name: "day by pincode", mode: cowin.ModeDay, q: testQuery(domain.LocationPincode, "400001")},
		{name: "day by district", mode: cowin.ModeDay, q: testQuery(domain.LocationDistrict, "395")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &scenario{openAfter: 1, capacity: 4}
			srv := httptest.NewServer(newMux(testLogger(), sc))
			t.Cleanup(srv.Close)

			client := cowin.NewHTTPClient(
				cowin.WithBaseURL(srv.URL+"/api"),
				cowin.WithMode(tt.mode),
			)

			doc, err := client.Fetch(t.Context(), tt.q)
			if err != nil {
				t.Fatalf("first fetch: %v", err)
			}
			if engine.Evaluate(doc).Available {
				t.Error("first fetch available, want closed")
			}

			doc, err = client.Fetch(t.Context(), tt.q)
			if err != nil {
				t.Fatalf("second fetch: %v", err)
			}
			res := engine.Evaluate(doc)
			if !res.Available {
				t.Fatal("second fetch closed, want available")
			}
			if len(res.OpenCenters) != 2 {
				t.Errorf("open centers=%d, want 2", len(res.OpenCenters))
			}
		})
	}
}

func TestMockServer_InjectedFailureIsTransportError(t *testing.T) {
	sc := &scenario{openAfter: 0, failEvery: 1}
	srv := httptest.NewServer(newMux(testLogger(), sc))
	t.Cleanup(srv.Close)

	client := cowin.NewHTTPClient(cowin.WithBaseURL(srv.URL + "/api"))

	_, err := client.Fetch(t.Context(), testQuery(domain.LocationPincode, "400001"))
	if !errors.Is(err, cowin.ErrTransport) {
		t.Fatalf("err=%v, want ErrTransport", err)
	}
}
