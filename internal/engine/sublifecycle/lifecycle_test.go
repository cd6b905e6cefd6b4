package sublifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/engine/clock"
	"github.com/indianduo/progression-engine/internal/models"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMachine_Subscribe(t *testing.T) {
	clk := clock.NewFake(baseTime)
	machine := New(clk)

	created, canceled, err := machine.Subscribe(nil, "uid-1", models.PlanPlus)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Nil(t, canceled)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "uid-1", created.UserUID)
	assert.Equal(t, models.PlanPlus, created.Plan)
	assert.Equal(t, models.SubActive, created.Status)
	assert.Equal(t, baseTime, created.ActivatedAt)
	require.NotNil(t, created.ExpiresAt)
	assert.Equal(t, baseTime.Add(BillingPeriod), *created.ExpiresAt)
}

func TestMachine_Subscribe_SamePlanRejected(t *testing.T) {
	clk := clock.NewFake(baseTime)
	machine := New(clk)

	current, _, err := machine.Subscribe(nil, "uid-1", models.PlanPlus)
	require.NoError(t, err)

	_, _, err = machine.Subscribe(current, "uid-1", models.PlanPlus)
	assert.ErrorIs(t, err, engine.ErrAlreadySubscribed)
}

func TestMachine_Subscribe_PlanChangeCancelsCurrent(t *testing.T) {
	clk := clock.NewFake(baseTime)
	machine := New(clk)

	current, _, err := machine.Subscribe(nil, "uid-1", models.PlanPlus)
	require.NoError(t, err)

	clk.Advance(24 * time.Hour)
	created, canceled, err := machine.Subscribe(current, "uid-1", models.PlanFamily)
	require.NoError(t, err)

	require.NotNil(t, canceled)
	assert.Equal(t, models.SubCanceled, canceled.Status)
	assert.Equal(t, current.ID, canceled.ID)

	require.NotNil(t, created)
	assert.Equal(t, models.PlanFamily, created.Plan)
	assert.NotEqual(t, current.ID, created.ID)
}

func TestMachine_Subscribe_AfterExpiryTreatedAsFresh(t *testing.T) {
	clk := clock.NewFake(baseTime)
	machine := New(clk)

	current, _, err := machine.Subscribe(nil, "uid-1", models.PlanPlus)
	require.NoError(t, err)

	clk.Advance(BillingPeriod + time.Hour)
	created, canceled, err := machine.Subscribe(current, "uid-1", models.PlanPlus)
	require.NoError(t, err)
	assert.Nil(t, canceled, "истёкшая подписка не отменяется")
	assert.Equal(t, models.SubActive, created.Status)
}

func TestMachine_Cancel(t *testing.T) {
	clk := clock.NewFake(baseTime)
	machine := New(clk)

	current, _, err := machine.Subscribe(nil, "uid-1", models.PlanPlus)
	require.NoError(t, err)

	clk.Advance(48 * time.Hour)
	canceled, err := machine.Cancel(current)
	require.NoError(t, err)

	assert.Equal(t, models.SubCanceled, canceled.Status)
	require.NotNil(t, canceled.CanceledAt)
	assert.Equal(t, clk.Now(), *canceled.CanceledAt)
	assert.Equal(t, current.ExpiresAt, canceled.ExpiresAt, "льготный период сохраняет expires_at")
}

func TestMachine_Cancel_Rejections(t *testing.T) {
	clk := clock.NewFake(baseTime)
	machine := New(clk)

	expired := baseTime.Add(-time.Hour)
	tests := []struct {
		name    string
		current *models.Subscription
	}{
		{
			name:    "нет подписки",
			current: nil,
		},
		{
			name: "уже отменена",
			current: &models.Subscription{
				Status: models.SubCanceled,
			},
		},
		{
			name: "уже истекла",
			current: &models.Subscription{
				Status:    models.SubActive,
				ExpiresAt: &expired,
			},
		},
		{
			name: "неактивна",
			current: &models.Subscription{
				Status: models.SubInactive,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := machine.Cancel(tt.current)
			assert.ErrorIs(t, err, engine.ErrNoActiveSubscription)
		})
	}
}

func TestMachine_ExpireIfDue(t *testing.T) {
	clk := clock.NewFake(baseTime)
	machine := New(clk)

	past := baseTime.Add(-time.Hour)
	future := baseTime.Add(time.Hour)

	tests := []struct {
		name       string
		current    *models.Subscription
		wantStatus models.SubscriptionStatus
	}{
		{
			name:       "активная с будущим сроком не меняется",
			current:    &models.Subscription{Status: models.SubActive, ExpiresAt: &future},
			wantStatus: models.SubActive,
		},
		{
			name:       "активная с прошедшим сроком истекает",
			current:    &models.Subscription{Status: models.SubActive, ExpiresAt: &past},
			wantStatus: models.SubExpired,
		},
		{
			name:       "отменённая с прошедшим сроком истекает",
			current:    &models.Subscription{Status: models.SubCanceled, ExpiresAt: &past},
			wantStatus: models.SubExpired,
		},
		{
			name:       "истёкшая не меняется",
			current:    &models.Subscription{Status: models.SubExpired, ExpiresAt: &past},
			wantStatus: models.SubExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := machine.ExpireIfDue(tt.current)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}

	assert.Nil(t, machine.ExpireIfDue(nil))
}
