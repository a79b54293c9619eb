// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package benchmarks

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/labstack/echo/v4"

	"rivaas.dev/routing"
)

func newRouter(b *testing.B, opts ...routing.Option) *routing.Router {
	b.Helper()
	r, err := routing.New(opts...)
	if err != nil {
		b.Fatal(err)
	}
	r.MustOn(http.MethodGet, "/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Hello"))
	})
	r.MustOn(http.MethodGet, "/users/:id", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User: " + routing.Param(req, "id")))
	})
	r.MustOn(http.MethodGet, "/users/:id/posts/:post_id", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User: " + routing.Param(req, "id") + ", Post: " + routing.Param(req, "post_id")))
	})
	return r
}

func serve(b *testing.B, h http.Handler, target string) {
	b.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		w.Body.Reset()
		w.Code = 0
		w.Flushed = false
		h.ServeHTTP(w, req)
	}
}

func BenchmarkRouterStatic(b *testing.B) {
	serve(b, newRouter(b), "/")
}

func BenchmarkRouterParam(b *testing.B) {
	serve(b, newRouter(b), "/users/123")
}

func BenchmarkRouterTwoParams(b *testing.B) {
	serve(b, newRouter(b), "/users/123/posts/456")
}

// BenchmarkFind measures the trie walk alone, without request dispatch.
func BenchmarkFind(b *testing.B) {
	r := newRouter(b)
	b.ReportAllocs()
	for b.Loop() {
		if _, ok := r.Find(http.MethodGet, "/users/123/posts/456", nil); !ok {
			b.Fatal("no match")
		}
	}
}

func BenchmarkFindHostConstraint(b *testing.B) {
	r := newRouter(b)
	h := func(http.ResponseWriter, *http.Request) {}
	r.MustOn(http.MethodGet, "/users/:id", h, routing.WithConstraint("host", "api.example.com"))
	r.MustOn(http.MethodGet, "/users/:id", h, routing.WithConstraint("host", "www.example.com"))
	derived := map[string]string{"host": "www.example.com"}

	b.ReportAllocs()
	for b.Loop() {
		if _, ok := r.Find(http.MethodGet, "/users/123", derived); !ok {
			b.Fatal("no match")
		}
	}
}

func BenchmarkFindVersionConstraint(b *testing.B) {
	r := newRouter(b)
	h := func(http.ResponseWriter, *http.Request) {}
	for _, v := range []string{"1.0.0", "1.2.0", "2.0.0", "2.4.1"} {
		r.MustOn(http.MethodGet, "/items", h, routing.WithConstraint("version", v))
	}
	derived := map[string]string{"version": "2.x"}

	b.ReportAllocs()
	for b.Loop() {
		if _, ok := r.Find(http.MethodGet, "/items", derived); !ok {
			b.Fatal("no match")
		}
	}
}

func BenchmarkStandardMux(b *testing.B) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Hello"))
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User: " + req.PathValue("id")))
	})
	mux.HandleFunc("GET /users/{id}/posts/{post_id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User: " + req.PathValue("id") + ", Post: " + req.PathValue("post_id")))
	})
	serve(b, mux, "/users/123")
}

func BenchmarkGinRouter(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello")
	})
	r.GET("/users/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "User: "+c.Param("id"))
	})
	r.GET("/users/:id/posts/:post_id", func(c *gin.Context) {
		c.String(http.StatusOK, "User: "+c.Param("id")+", Post: "+c.Param("post_id"))
	})
	serve(b, r, "/users/123")
}

func BenchmarkEchoRouter(b *testing.B) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello")
	})
	e.GET("/users/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "User: "+c.Param("id"))
	})
	e.GET("/users/:id/posts/:post_id", func(c echo.Context) error {
		return c.String(http.StatusOK, "User: "+c.Param("id")+", Post: "+c.Param("post_id"))
	})
	serve(b, e, "/users/123")
}

func BenchmarkChiRouter(b *testing.B) {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Hello"))
	})
	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User: " + chi.URLParam(req, "id")))
	})
	r.Get("/users/{id}/posts/{post_id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User: " + chi.URLParam(req, "id") + ", Post: " + chi.URLParam(req, "post_id")))
	})
	serve(b, r, "/users/123")
}
