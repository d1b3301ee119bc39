package service

import (
	"sync"

	"file-conversion-server/internal/domain"
)

// Mock logger used by service package tests.
type MockLogger struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

var _ domain.Logger = (*MockLogger)(nil)

func (l *MockLogger) Info(msg string, fields ...interface{})  {}
func (l *MockLogger) Debug(msg string, fields ...interface{}) {}
func (l *MockLogger) Warn(msg string, fields ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}
func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *MockLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

func (l *MockLogger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}
