package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/Harshitk-cp/agentlink/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestRecordDirectoryCall(t *testing.T) {
	before := testutil.ToFloat64(DirectoryCalls.WithLabelValues("connect", "auth"))

	RecordDirectoryCall("connect", 20*time.Millisecond, &domain.AuthError{Op: "connect", StatusCode: 401})

	after := testutil.ToFloat64(DirectoryCalls.WithLabelValues("connect", "auth"))
	assert.Equal(t, before+1, after)
}

func TestRecordDirectoryCall_Outcomes(t *testing.T) {
	cases := map[string]error{
		"ok":        nil,
		"transport": &domain.TransportError{Op: "search", StatusCode: 502},
		"not_found": &domain.NotFoundError{Capability: "x"},
		"unknown":   errors.New("boom"),
	}
	for outcome, err := range cases {
		before := testutil.ToFloat64(DirectoryCalls.WithLabelValues("search", outcome))
		RecordDirectoryCall("search", time.Millisecond, err)
		assert.Equal(t, before+1, testutil.ToFloat64(DirectoryCalls.WithLabelValues("search", outcome)), outcome)
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "3xx", statusClass(304))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
}
