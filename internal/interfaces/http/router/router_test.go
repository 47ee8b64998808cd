package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRoute struct {
	method string
	path   string
	body   string
}

// stubRegistrar mounts a fixed set of routes, mirroring how the sync and
// mapping handlers register themselves.
type stubRegistrar struct {
	prefix string
	routes []stubRoute
}

func (s *stubRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(s.prefix)
	for _, route := range s.routes {
		body := route.body
		group.Handle(route.method, route.path, func(c *gin.Context) {
			c.String(http.StatusOK, body)
		})
	}
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(&stubRegistrar{prefix: "/sync"})

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	r.Register(&stubRegistrar{
		prefix: "/sync",
		routes: []stubRoute{{"GET", "/status", "idle"}},
	})
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/sync/status", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", w.Body.String())
}

func TestRouterSetup_MultipleRegistrars(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	sync := &stubRegistrar{
		prefix: "/sync",
		routes: []stubRoute{{"POST", "/full", "started"}},
	}
	mappings := &stubRegistrar{
		prefix: "/mappings",
		routes: []stubRoute{{"GET", "", "mappings"}},
	}

	r.Register(sync).Register(mappings)
	r.Setup()

	req1 := httptest.NewRequest("POST", "/api/v1/sync/full", nil)
	w1 := httptest.NewRecorder()
	engine.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "started", w1.Body.String())

	req2 := httptest.NewRequest("GET", "/api/v1/mappings", nil)
	w2 := httptest.NewRecorder()
	engine.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "mappings", w2.Body.String())
}

func TestRouterRegisterChains(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	a := &stubRegistrar{prefix: "/rates", routes: []stubRoute{{"GET", "/current", "rate"}}}
	b := &stubRegistrar{prefix: "/webhooks", routes: []stubRoute{{"GET", "/recent", "events"}}}

	r.Register(a).Register(b).Setup()

	for path, want := range map[string]string{
		"/api/v1/rates/current":   "rate",
		"/api/v1/webhooks/recent": "events",
	} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "route %s should work", path)
		assert.Equal(t, want, w.Body.String())
	}
}
