package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func TestBrotli(t *testing.T) {
	big := strings.Repeat("event ", 500)
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 2048)...)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, big) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "tiny") })
	r.GET("/image", func(c *gin.Context) { c.Data(http.StatusOK, "image/png", png) })

	get := func(path, accept string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if accept != "" {
			req.Header.Set("Accept-Encoding", accept)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/big", "gzip, br")
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("big body not compressed")
	}
	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(plain) != big {
		t.Error("decompressed body differs")
	}

	if w := get("/small", "br"); w.Header().Get("Content-Encoding") != "" || w.Body.String() != "tiny" {
		t.Errorf("small body: encoding %q, body %q", w.Header().Get("Content-Encoding"), w.Body.String())
	}
	if w := get("/image", "br"); w.Header().Get("Content-Encoding") != "" || !bytes.Equal(w.Body.Bytes(), png) {
		t.Error("image body was altered")
	}
	if w := get("/big", ""); w.Header().Get("Content-Encoding") != "" || w.Body.String() != big {
		t.Error("client without br support got a compressed body")
	}
}
