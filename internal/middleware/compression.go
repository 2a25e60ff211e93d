// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// DefaultCompressionMinSize is the body size below which responses are sent
// uncompressed.
const DefaultCompressionMinSize = 1024

// gzipWriterPool pools gzip writers to reduce allocations
var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(io.Discard)
	},
}

// gzipResponseWriter buffers the body until minSize bytes are seen, then
// switches to gzip. Bodies that never reach minSize are written as-is.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz      *gzip.Writer
	buf     []byte
	minSize int
	status  int
	decided bool
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if w.decided {
		if w.gz != nil {
			return w.gz.Write(b)
		}
		return w.ResponseWriter.Write(b)
	}

	w.buf = append(w.buf, b...)
	if len(w.buf) < w.minSize {
		return len(b), nil
	}
	if err := w.start(true); err != nil {
		return 0, err
	}
	return len(b), nil
}

// start commits the headers and flushes the buffered body.
func (w *gzipResponseWriter) start(compress bool) error {
	w.decided = true
	if w.status == 0 {
		w.status = http.StatusOK
	}

	h := w.Header()
	if compress && h.Get("Content-Encoding") == "" && bodyAllowed(w.status) {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		w.gz = gzipWriterPool.Get().(*gzip.Writer)
		w.gz.Reset(w.ResponseWriter)
	}

	w.ResponseWriter.WriteHeader(w.status)
	if len(w.buf) == 0 {
		return nil
	}

	var err error
	if w.gz != nil {
		_, err = w.gz.Write(w.buf)
	} else {
		_, err = w.ResponseWriter.Write(w.buf)
	}
	w.buf = nil
	return err
}

// finish writes any buffered body and releases the gzip writer.
func (w *gzipResponseWriter) finish() {
	if !w.decided {
		_ = w.start(false) // response already committed by the handler
	}
	if w.gz != nil {
		_ = w.gz.Close()
		gzipWriterPool.Put(w.gz)
		w.gz = nil
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// bodyAllowed reports whether a response with the status may carry a body.
func bodyAllowed(status int) bool {
	return status != http.StatusNoContent && status != http.StatusNotModified && status >= http.StatusOK
}

// Compression gzips responses of at least minSize bytes for clients that
// accept it. A non-positive minSize selects DefaultCompressionMinSize.
func Compression(minSize int) func(http.Handler) http.Handler {
	if minSize <= 0 {
		minSize = DefaultCompressionMinSize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept-Encoding")

			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipResponseWriter{ResponseWriter: w, minSize: minSize}
			defer gzw.finish()
			next.ServeHTTP(gzw, r)
		})
	}
}
