package cowin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vaccine-alert/internal/cowin"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

const calendarBody = `{
	"centers": [
		{
			"center_id": 561660,
			"name": "Kasturba Hospital",
			"address": "Sane Guruji Marg",
			"district_name": "Mumbai",
			"pincode": 400001,
			"fee_type": "Free",
			"sessions": [
				{
					"session_id": "a1",
					"date": "10-05-2021",
					"available_capacity": 0,
					"min_age_limit": 45,
					"vaccine": "COVISHIELD",
					"slots": ["09:00AM-11:00AM"]
				},
				{
					"session_id": "a2",
					"date": "11-05-2021",
					"available_capacity": 12,
					"available_capacity_dose1": 10,
					"available_capacity_dose2": 2,
					"min_age_limit": 18,
					"vaccine": "COVAXIN",
					"slots": [{"time": "11:00AM-01:00PM", "seats": 12}]
				}
			]
		}
	]
}`

func testQuery(kind domain.LocationKind, code string) domain.LocationQuery {
	return domain.LocationQuery{
		Kind: kind,
		Code: code,
		Date: time.Date(2021, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestHTTPClient_Fetch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mode        cowin.Mode
		query       domain.LocationQuery
		handler     http.HandlerFunc
		wantErr     error
		errContain  string
		wantCenters int
	}{
		{
			name:  "calendar by pincode",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/appointment/sessions/public/calendarByPin", r.URL.Path)
				assert.Equal(t, "400001", r.URL.Query().Get("pincode"))
				assert.Equal(t, "10-05-2021", r.URL.Query().Get("date"))
				assert.Equal(t, "hi_IN", r.Header.Get("Accept-Language"))
				assert.NotEmpty(t, r.Header.Get("User-Agent"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(calendarBody))
			},
			wantCenters: 1,
		},
		{
			name:  "calendar by district",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationDistrict, "395"),
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/appointment/sessions/public/calendarByDistrict", r.URL.Path)
				assert.Equal(t, "395", r.URL.Query().Get("district_id"))
				_, _ = w.Write([]byte(`{"centers": []}`))
			},
			wantCenters: 0,
		},
		{
			name:  "day by pincode regroups sessions",
			mode:  cowin.ModeDay,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/appointment/sessions/public/findByPin", r.URL.Path)
				_, _ = w.Write([]byte(`{"sessions": [
					{"center_id": 1, "name": "A", "session_id": "x", "date": "10-05-2021", "available_capacity": 3},
					{"center_id": 2, "name": "B", "session_id": "y", "date": "10-05-2021", "available_capacity": 0},
					{"center_id": 1, "name": "A", "session_id": "z", "date": "10-05-2021", "available_capacity": 1}
				]}`))
			},
			wantCenters: 2,
		},
		{
			name:  "day by district",
			mode:  cowin.ModeDay,
			query: testQuery(domain.LocationDistrict, "395"),
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/appointment/sessions/public/findByDistrict", r.URL.Path)
				_, _ = w.Write([]byte(`{"sessions": []}`))
			},
			wantCenters: 0,
		},
		{
			name:  "rate limited upstream is a transport error",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr:    cowin.ErrTransport,
			errContain: "status 429",
		},
		{
			name:  "forbidden is a transport error",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("<html>blocked</html>"))
			},
			wantErr:    cowin.ErrTransport,
			errContain: "status 403",
		},
		{
			name:  "invalid JSON is a format error",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantErr:    cowin.ErrFormat,
			errContain: "parsing calendar response",
		},
		{
			name:  "missing centers key is a format error",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"sessions": []}`))
			},
			wantErr:    cowin.ErrFormat,
			errContain: `no "centers" key`,
		},
		{
			name:  "missing sessions key is a format error",
			mode:  cowin.ModeDay,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"centers": []}`))
			},
			wantErr:    cowin.ErrFormat,
			errContain: `no "sessions" key`,
		},
		{
			name:  "session missing available_capacity is a format error",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"centers": [{"center_id": 1, "name": "X",
					"sessions": [{"date": "10-05-2021", "capacity": 5}]}]}`))
			},
			wantErr:    cowin.ErrFormat,
			errContain: `no "available_capacity" key`,
		},
		{
			name:  "center missing sessions is a format error",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"centers": [{"center_id": 1, "name": "X"}]}`))
			},
			wantErr:    cowin.ErrFormat,
			errContain: `center 1 (index 0) has no "sessions" key`,
		},
		{
			name:  "day session missing available_capacity is a format error",
			mode:  cowin.ModeDay,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"sessions": [{"center_id": 1, "name": "A", "date": "10-05-2021"}]}`))
			},
			wantErr:    cowin.ErrFormat,
			errContain: `no "available_capacity" key`,
		},
		{
			name:  "center with empty sessions list is not an error",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"centers": [{"center_id": 1, "sessions": []}]}`))
			},
			wantCenters: 1,
		},
		{
			name:  "non-numeric capacity is a format error",
			mode:  cowin.ModeCalendar,
			query: testQuery(domain.LocationPincode, "400001"),
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"centers": [{"center_id": 1, "sessions": [{"available_capacity": "lots"}]}]}`))
			},
			wantErr: cowin.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := cowin.NewHTTPClient(
				cowin.WithBaseURL(srv.URL),
				cowin.WithMode(tt.mode),
			)

			doc, err := client.Fetch(context.Background(), tt.query)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.errContain != "" {
					assert.Contains(t, err.Error(), tt.errContain)
				}
				assert.Nil(t, doc)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, doc)
			assert.Len(t, doc.Centers, tt.wantCenters)
		})
	}
}

func TestHTTPClient_Fetch_ParsesCalendar(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(calendarBody))
	}))
	defer srv.Close()

	client := cowin.NewHTTPClient(cowin.WithBaseURL(srv.URL))
	doc, err := client.Fetch(context.Background(), testQuery(domain.LocationPincode, "400001"))
	require.NoError(t, err)

	require.Len(t, doc.Centers, 1)
	c := doc.Centers[0]
	assert.Equal(t, 561660, c.ID)
	assert.Equal(t, "Kasturba Hospital", c.Name)
	assert.Equal(t, "Mumbai", c.District)
	assert.Equal(t, 400001, c.Pincode)
	assert.Equal(t, "Free", c.FeeType)

	require.Len(t, c.Sessions, 2)
	assert.Equal(t, 0, c.Sessions[0].AvailableCapacity)
	assert.Equal(t, 12, c.Sessions[1].AvailableCapacity)
	assert.Equal(t, 10, c.Sessions[1].Dose1Capacity)
	assert.Equal(t, 2, c.Sessions[1].Dose2Capacity)
	assert.Equal(t, 18, c.Sessions[1].MinAgeLimit)
	assert.Equal(t, "COVAXIN", c.Sessions[1].Vaccine)
	assert.Equal(t, []string{"11:00AM-01:00PM"}, c.Sessions[1].Slots)
}

func TestHTTPClient_Fetch_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := cowin.NewHTTPClient(cowin.WithBaseURL(url))
	_, err := client.Fetch(context.Background(), testQuery(domain.LocationPincode, "400001"))
	require.ErrorIs(t, err, cowin.ErrTransport)
}

func TestHTTPClient_Fetch_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := cowin.NewHTTPClient(
		cowin.WithBaseURL(srv.URL),
		cowin.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
	)
	_, err := client.Fetch(context.Background(), testQuery(domain.LocationPincode, "400001"))
	require.ErrorIs(t, err, cowin.ErrTransport)
}

func TestHTTPClient_Fetch_BudgetExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"centers": []}`))
	}))
	defer srv.Close()

	client := cowin.NewHTTPClient(
		cowin.WithBaseURL(srv.URL),
		cowin.WithRateLimiter(cowin.NewRateLimiter(1, 5*time.Minute, 1)),
	)

	q := testQuery(domain.LocationPincode, "400001")
	_, err := client.Fetch(context.Background(), q)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), q)
	require.ErrorIs(t, err, cowin.ErrBudgetExhausted)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_Fetch_UnknownKind(t *testing.T) {
	t.Parallel()

	client := cowin.NewHTTPClient(cowin.WithBaseURL("http://127.0.0.1:1"))
	_, err := client.Fetch(context.Background(), testQuery("state", "21"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported location kind")
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	t.Parallel()

	client := cowin.NewHTTPClient()
	assert.Equal(t, cowin.ModeCalendar, client.Mode())
}
