package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/audit/storage"
	"mercator-hq/guard/pkg/catalog"
	"mercator-hq/guard/pkg/config"
)

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{
			name: "no checks",
			want: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"catalog": func(context.Context) error { return nil },
				"audit":   func(context.Context) error { return nil },
			},
			want: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"catalog": func(context.Context) error { return nil },
				"audit":   func(context.Context) error { return errors.New("locked") },
			},
			want: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}

			status := c.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("status = %q, want %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := c.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check = %+v, want timeout", result)
	}
}

func TestListChecks(t *testing.T) {
	c := New(0)
	c.RegisterCheck("storage", func(context.Context) error { return nil })
	c.RegisterCheck("catalog", func(context.Context) error { return nil })
	c.RegisterCheck("catalog", func(context.Context) error { return nil })

	got := c.ListChecks()
	if len(got) != 2 || got[0] != "catalog" || got[1] != "storage" {
		t.Errorf("ListChecks() = %v", got)
	}
}

func TestCatalogCheck(t *testing.T) {
	var current *catalog.Catalog
	check := CatalogCheck(func() *catalog.Catalog { return current })

	if err := check(context.Background()); err == nil {
		t.Error("expected error before the catalog is loaded")
	}

	current = catalog.Default()
	if err := check(context.Background()); err != nil {
		t.Errorf("loaded catalog: %v", err)
	}
}

func TestConfigCheck(t *testing.T) {
	var current *config.Config
	check := ConfigCheck(func() *config.Config { return current })

	if err := check(context.Background()); err == nil {
		t.Error("expected error before configuration is active")
	}

	current = config.Default()
	if err := check(context.Background()); err != nil {
		t.Errorf("default configuration: %v", err)
	}

	bad := config.Default()
	bad.Identity.CurrentUserID = "  "
	current = bad
	if err := check(context.Background()); err == nil {
		t.Error("expected error for an invalid configuration")
	}
}

func TestStorageCheck(t *testing.T) {
	store := storage.NewMemoryStorage(10)
	check := StorageCheck(store)

	if err := check(context.Background()); err != nil {
		t.Errorf("memory storage: %v", err)
	}

	failing := StorageCheck(brokenStorage{})
	if err := failing(context.Background()); err == nil {
		t.Error("expected error from failing storage")
	}
}

type brokenStorage struct{ audit.Storage }

func (brokenStorage) Count(context.Context, *audit.Query) (int64, error) {
	return 0, errors.New("disk gone")
}

func TestHandlers(t *testing.T) {
	c := New(time.Second)
	healthy := true
	c.RegisterCheck("catalog", func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("not loaded")
	})

	mux := http.NewServeMux()
	c.Mount(VersionInfo{Version: "1.2.3", Commit: "abc"})(mux)

	tests := []struct {
		name    string
		method  string
		path    string
		healthy bool
		code    int
		status  string
	}{
		{"liveness", http.MethodGet, LivenessPath, false, http.StatusOK, StatusOK},
		{"ready", http.MethodGet, ReadinessPath, true, http.StatusOK, StatusReady},
		{"not ready", http.MethodGet, ReadinessPath, false, http.StatusServiceUnavailable, StatusDegraded},
		{"post rejected", http.MethodPost, LivenessPath, true, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthy = tt.healthy
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d", rec.Code, tt.code)
			}
			if tt.status == "" {
				return
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Status != tt.status {
				t.Errorf("status = %q, want %q", status.Status, tt.status)
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler(VersionInfo{Version: "1.2.3"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, VersionPath, nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.GoVersion == "" {
		t.Errorf("version info = %+v", info)
	}
}
