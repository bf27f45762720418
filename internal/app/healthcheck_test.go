package app

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/seat-reservation/api"
)

func TestGetHealth(t *testing.T) {
	app := newTestApplication(nil, nil)

	w := serve(t, app, http.MethodGet, "/healthcheck", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GetHealth() status = %v, want %v", w.Code, http.StatusOK)
	}

	want := api.HealthcheckResponse{
		Status: "UP",
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: "test",
			Store:       StoreMemory,
		},
	}

	got := decodeResponse[api.HealthcheckResponse](t, w)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetHealth() response mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApplication(nil, nil)

	w := serve(t, app, http.MethodGet, "/theaters", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %v, want %v", w.Code, http.StatusNotFound)
	}

	w = serve(t, app, http.MethodPut, "/shows", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %v, want %v", w.Code, http.StatusMethodNotAllowed)
	}
}
