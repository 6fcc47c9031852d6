package middleware

import (
	"bytes"
	"compress/gzip"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CompressionConfig configures response compression
type CompressionConfig struct {
	BrotliLevel       int
	GzipLevel         int
	MinSizeBytes      int
	CompressibleTypes []string
}

// DefaultCompressionConfig returns sensible defaults
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		BrotliLevel:  5,
		GzipLevel:    gzip.DefaultCompression,
		MinSizeBytes: 1024,
		CompressibleTypes: []string{
			"application/json",
			"text/plain",
		},
	}
}

// bufferedWriter holds the response body until the handler chain returns
type bufferedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

func (w *bufferedWriter) Written() bool {
	return w.buf.Len() > 0 || w.ResponseWriter.Written()
}

// Compression encodes responses with brotli or gzip when the client
// accepts it. Brotli is preferred.
func (m *Middleware) Compression(cfg CompressionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		encoding := negotiateEncoding(c.GetHeader("Accept-Encoding"))
		if encoding == "" || c.Request.Method == "HEAD" {
			c.Next()
			return
		}

		bw := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		defer func() { c.Writer = bw.ResponseWriter }()

		c.Next()

		m.finishCompression(bw, encoding, cfg)
	}
}

func (m *Middleware) finishCompression(bw *bufferedWriter, encoding string, cfg CompressionConfig) {
	body := bw.buf.Bytes()
	if len(body) == 0 {
		return
	}

	w := bw.ResponseWriter
	if len(body) < cfg.MinSizeBytes ||
		w.Header().Get("Content-Encoding") != "" ||
		!isCompressible(w.Header().Get("Content-Type"), cfg.CompressibleTypes) {
		_, _ = w.Write(body)
		return
	}

	compressed, err := compress(body, encoding, cfg)
	if err != nil {
		m.logger.Warn("Response compression failed", zap.String("encoding", encoding), zap.Error(err))
		_, _ = w.Write(body)
		return
	}

	w.Header().Set("Content-Encoding", encoding)
	w.Header().Add("Vary", "Accept-Encoding")
	w.Header().Del("Content-Length")
	_, _ = w.Write(compressed)
}

func compress(body []byte, encoding string, cfg CompressionConfig) ([]byte, error) {
	var buf bytes.Buffer

	switch encoding {
	case "br":
		writer := brotli.NewWriterLevel(&buf, cfg.BrotliLevel)
		if _, err := writer.Write(body); err != nil {
			writer.Close()
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
	default:
		writer, err := gzip.NewWriterLevel(&buf, cfg.GzipLevel)
		if err != nil {
			return nil, err
		}
		if _, err := writer.Write(body); err != nil {
			writer.Close()
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// negotiateEncoding picks br or gzip from an Accept-Encoding header
func negotiateEncoding(header string) string {
	if header == "" {
		return ""
	}

	encodings := make(map[string]float64)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		quality := 1.0
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil {
				quality = v
			}
		}
		encodings[strings.ToLower(strings.TrimSpace(name))] = quality
	}

	if q, ok := encodings["br"]; ok && q > 0 {
		return "br"
	}
	if q, ok := encodings["gzip"]; ok && q > 0 {
		return "gzip"
	}
	return ""
}

func isCompressible(contentType string, types []string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, t := range types {
		if strings.EqualFold(t, mediaType) {
			return true
		}
	}
	return false
}
