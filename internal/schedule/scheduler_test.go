package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type namedJob string

func (j namedJob) Name() string                  { return string(j) }
func (j namedJob) Run(ctx context.Context) error { return nil }

func TestAddJobRejectsInvalidSchedule(t *testing.T) {
	s := NewCronScheduler()
	require.Error(t, s.AddJob(namedJob("cleanup"), "not a cron line"))
}

func TestAddJobRejectsDuplicateName(t *testing.T) {
	s := NewCronScheduler()
	require.NoError(t, s.AddJob(namedJob("cleanup"), "0 4 * * *"))
	err := s.AddJob(namedJob("cleanup"), "30 4 * * *")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cleanup")
}
