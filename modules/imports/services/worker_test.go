package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerOptionsDefaults(t *testing.T) {
	var opts WorkerOptions
	opts.setDefaults()

	assert.Equal(t, 5*time.Second, opts.PollInterval)
	assert.Equal(t, 4, opts.BatchSize)
	assert.Equal(t, SystemActorID, opts.ActorID)
	require.NotNil(t, opts.Logger)
}

func TestWorkerOptionsKeepExplicitValues(t *testing.T) {
	actor := uuid.New()
	opts := WorkerOptions{PollInterval: time.Minute, BatchSize: 16, ActorID: actor}
	opts.setDefaults()

	assert.Equal(t, time.Minute, opts.PollInterval)
	assert.Equal(t, 16, opts.BatchSize)
	assert.Equal(t, actor, opts.ActorID)
}

func TestPackageLockKeyIsStable(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, packageLockKey(id), packageLockKey(id))
	assert.NotEqual(t, packageLockKey(id), packageLockKey(uuid.New()))
}

func TestNewPipelineWorkerRequiresCollaborators(t *testing.T) {
	_, err := NewPipelineWorker(nil, &stubPackages{}, &PackageService{}, WorkerOptions{})
	require.Error(t, err)
}
