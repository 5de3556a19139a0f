package errreport

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_WithoutTokenIsNoOp(t *testing.T) {
	r := New(Config{})
	_, ok := r.(NoOp)
	assert.True(t, ok)

	// must not panic
	r.Report(httptest.NewRequest("GET", "/", nil), errors.New("boom"))
	r.Close()
}
