package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// snapshot is a fully rendered response kept for replay.
type snapshot struct {
	status int
	header http.Header
	body   []byte
}

func (s snapshot) replay(c *gin.Context) {
	h := c.Writer.Header()
	for name, values := range s.header {
		h[name] = values
	}
	h.Set("X-Cache", "HIT")
	c.Writer.WriteHeader(s.status)
	_, _ = c.Writer.Write(s.body)
	c.Abort()
}

// recorder tees the response body into a buffer while it is being sent.
type recorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteString(s string) (int, error) {
	r.buf.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

func success(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// Cache replays successful GET responses for the same URI for ttl.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if v, ok := store.Get(key); ok {
			v.(snapshot).replay(c)
			return
		}

		c.Writer.Header().Set("X-Cache", "MISS")
		rec := &recorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if !success(rec.Status()) {
			return
		}
		header := rec.Header().Clone()
		header.Del("X-Cache")
		store.Set(key, snapshot{status: rec.Status(), header: header, body: rec.buf.Bytes()}, ttl)
	}
}

// InvalidateCache drops every cached response after a successful write.
func InvalidateCache(store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if success(c.Writer.Status()) {
			store.Flush()
		}
	}
}
