package jobs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgedlabs/mailverify/internal/jobs"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := jobs.New()
	id := r.Create("batch_verify", 3, map[string]any{"fast_mode": true})

	job, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, jobs.StatusPending, job.Status)
	assert.Equal(t, 3, job.TotalRows)
}

func TestRegistry_Lifecycle(t *testing.T) {
	r := jobs.New()
	id := r.Create("batch_verify", 2, nil)

	r.Start(id)
	job, _ := r.Get(id)
	assert.Equal(t, jobs.StatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	r.Increment(id, true, "")
	r.Increment(id, false, "rcpt rejected")

	job, _ = r.Get(id)
	assert.Equal(t, 2, job.ProcessedRows)
	assert.Equal(t, 1, job.SuccessRows)
	assert.Equal(t, 1, job.ErrorRows)
	assert.Equal(t, []string{"rcpt rejected"}, job.Errors)

	r.Complete(id, "/tmp/out.csv", "out.csv")
	job, _ = r.Get(id)
	assert.Equal(t, jobs.StatusCompleted, job.Status)
	assert.Equal(t, "out.csv", job.OutputFilename)
	require.NotNil(t, job.FinishedAt)
}

func TestRegistry_ErrorLogBounded(t *testing.T) {
	r := jobs.New()
	id := r.Create("batch_verify", 20, nil)

	for i := 0; i < 15; i++ {
		r.Increment(id, false, "error")
	}

	job, _ := r.Get(id)
	assert.Len(t, job.Errors, 10)
}

func TestRegistry_Fail(t *testing.T) {
	r := jobs.New()
	id := r.Create("batch_verify", 1, nil)

	r.Fail(id, "fatal: out of disk")
	job, _ := r.Get(id)
	assert.Equal(t, jobs.StatusFailed, job.Status)
	assert.Equal(t, "fatal: out of disk", job.Message)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := jobs.New()
	_, ok := r.Get("does-not-exist")
	assert.False(t, ok)
}

func TestRegistry_GetReturnsDefensiveCopy(t *testing.T) {
	r := jobs.New()
	id := r.Create("batch_verify", 1, nil)
	r.Increment(id, false, "first")

	job, _ := r.Get(id)
	job.Errors[0] = "mutated"

	fresh, _ := r.Get(id)
	assert.Equal(t, "first", fresh.Errors[0])
}
