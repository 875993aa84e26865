package xhttp

import (
	"github.com/stretchr/testify/mock"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Read(b []byte) (int, error) {
	// nolint: typecheck
	arguments := m.Called(b)
	return arguments.Int(0), arguments.Error(1)
}

type mockTempError struct{}

func (m mockTempError) Temporary() bool { return true }

func (m mockTempError) Error() string { return "mock temp error" }
