package domain

import (
	"context"
	"time"
)

// DocumentAdapter loads, composes and serializes PDF documents.
type DocumentAdapter interface {
	Load(ctx context.Context, data []byte, password string) (*Document, error)
	CopyPages(ctx context.Context, src *Document, indices []int) (*Document, error)
	Merge(ctx context.Context, docs []*Document) (*Document, error)
	Overlay(ctx context.Context, doc *Document, overlay Overlay) (*Document, error)
	Save(ctx context.Context, doc *Document, opts SaveOptions) ([]byte, error)
}

// TextExtractor pulls plain text out of a PDF, one string per page.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) ([]string, error)
}

// RatesProvider returns currency rates against a base currency.
type RatesProvider interface {
	Rates(ctx context.Context) (*RateTable, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetMaxFiles() int
	GetLogLevel() string
	GetAllowedOrigins() []string
	GetRatesURL() string
	GetRatesTimeout() time.Duration
	GetShutdownTimeout() time.Duration
}
