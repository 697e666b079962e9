package metrics

import (
	"errors"
	"testing"

	"itinvent-bot/pkg/render"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(func() int { return 3 })

	m.ObserveEvent("text", render.KindPrompt)
	m.ObserveEvent("text", render.KindPrompt)
	m.ObserveEvent("action", render.KindClarify)
	m.ObserveCommit("transfer", nil)
	m.ObserveCommit("transfer", errors.New("disk full"))
	m.ObserveCollaboratorFailure("documents")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("text", "prompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("action", "clarify")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits.WithLabelValues("transfer", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits.WithLabelValues("transfer", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collaboratorFailures.WithLabelValues("documents")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
}
