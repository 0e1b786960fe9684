package dealership

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/db"
	"github.com/autoyard/autoyard-backend/pkg/db/dbtest"
	"github.com/autoyard/autoyard-backend/pkg/enums"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
)

var (
	admin    = &users.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	customer = &users.Actor{UserID: uuid.New(), Role: enums.UserRoleUser}
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Tx: db.Wrap(conn)})
	require.NoError(t, err)
	return svc
}

func TestGetSeedsDefaultWeekOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	first, err := svc.Get(ctx, customer)
	require.NoError(t, err)
	require.Len(t, first.WorkingHours, 7)
	assert.Equal(t, "MONDAY", first.WorkingHours[0].DayOfWeek)
	assert.Equal(t, "SUNDAY", first.WorkingHours[6].DayOfWeek)
	assert.False(t, first.WorkingHours[6].IsOpen)
	assert.True(t, first.WorkingHours[5].IsOpen)
	assert.Equal(t, "08:00", first.WorkingHours[0].OpenTime)
	assert.Equal(t, "17:00", first.WorkingHours[0].CloseTime)

	second, err := svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetRequiresActor(t *testing.T) {
	_, err := newTestService(t).Get(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestSaveWorkingHoursReplacesAll(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.Info(ctx)
	require.NoError(t, err)

	saved, err := svc.SaveWorkingHours(ctx, admin, []WorkingHourInput{
		{DayOfWeek: "friday", OpenTime: "09:00", CloseTime: "18:00", IsOpen: true},
		{DayOfWeek: "Monday", OpenTime: "10:00", CloseTime: "16:00", IsOpen: true},
		{DayOfWeek: "SUNDAY", OpenTime: "00:00", CloseTime: "00:00", IsOpen: false},
	})
	require.NoError(t, err)
	require.Len(t, saved.WorkingHours, 3)
	assert.Equal(t, "MONDAY", saved.WorkingHours[0].DayOfWeek)
	assert.Equal(t, "FRIDAY", saved.WorkingHours[1].DayOfWeek)
	assert.Equal(t, "SUNDAY", saved.WorkingHours[2].DayOfWeek)

	reread, err := svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.WorkingHours, reread.WorkingHours)
}

func TestSaveWorkingHoursSeedsWhenMissing(t *testing.T) {
	saved, err := newTestService(t).SaveWorkingHours(context.Background(), admin, []WorkingHourInput{
		{DayOfWeek: "tuesday", OpenTime: "08:30", CloseTime: "12:00", IsOpen: true},
	})
	require.NoError(t, err)
	require.Len(t, saved.WorkingHours, 1)
	assert.Equal(t, "TUESDAY", saved.WorkingHours[0].DayOfWeek)
}

func TestSaveWorkingHoursValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cases := map[string][]WorkingHourInput{
		"unknown day":   {{DayOfWeek: "funday", OpenTime: "08:00", CloseTime: "17:00", IsOpen: true}},
		"bad time":      {{DayOfWeek: "monday", OpenTime: "8am", CloseTime: "17:00", IsOpen: true}},
		"out of range":  {{DayOfWeek: "monday", OpenTime: "08:00", CloseTime: "24:30", IsOpen: true}},
		"closes early":  {{DayOfWeek: "monday", OpenTime: "17:00", CloseTime: "08:00", IsOpen: true}},
		"duplicate day": {{DayOfWeek: "monday", OpenTime: "08:00", CloseTime: "17:00"}, {DayOfWeek: "MONDAY", OpenTime: "08:00", CloseTime: "17:00"}},
	}
	for name, input := range cases {
		_, err := svc.SaveWorkingHours(ctx, admin, input)
		require.Error(t, err, name)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code(), name)
	}

	_, err := svc.SaveWorkingHours(ctx, customer, nil)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestSaveWorkingHoursKeepsClosedDays(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.SaveWorkingHours(ctx, admin, []WorkingHourInput{
		{DayOfWeek: "monday", OpenTime: "08:00", CloseTime: "17:00", IsOpen: true},
		{DayOfWeek: "tuesday", OpenTime: "08:00", CloseTime: "17:00", IsOpen: false},
	})
	require.NoError(t, err)

	reread, err := svc.Info(ctx)
	require.NoError(t, err)
	require.Len(t, reread.WorkingHours, 2)
	assert.Equal(t, "TUESDAY", reread.WorkingHours[1].DayOfWeek)
	assert.False(t, reread.WorkingHours[1].IsOpen)
	assert.True(t, reread.WorkingHours[0].IsOpen)
}
