package module

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	modkit "auditforge/internal/modkit"
	"auditforge/internal/modkit/httpkit"
	"auditforge/internal/platform/config"
	phttp "auditforge/internal/platform/net/http"
)

func TestMountRoutesAppliesOptions(t *testing.T) {
	t.Parallel()

	var marked bool
	mark := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			marked = true
			next.ServeHTTP(w, r)
		})
	}

	m := New(modkit.Deps{Cfg: config.New()},
		modkit.WithMiddlewares(mark),
		modkit.WithRegister(func(r httpkit.Router) {
			httpkit.Get(r, "/extra", func(*http.Request) (any, error) {
				return map[string]string{"ok": "yes"}, nil
			})
		}),
	)

	root := chi.NewMux()
	m.MountRoutes(phttp.AdaptChi(root))

	rec := httptest.NewRecorder()
	root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/extra", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !marked {
		t.Fatal("module middleware did not run")
	}
}
