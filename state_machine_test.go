package connectify_test

import (
	"context"
	"testing"
	"time"

	"github.com/connectify/connectify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountStateMachineVerifiesPendingAccount(t *testing.T) {
	repo := &MockUsers{}
	user := &connectify.User{
		ID:     uuid.New(),
		Status: connectify.AccountStatusPending,
	}

	repo.On("UpdateStatus", mock.Anything, user.ID, connectify.AccountStatusVerified).
		Return(&connectify.User{ID: user.ID, Status: connectify.AccountStatusVerified}, nil).Once()

	sink := &collectSink{}
	sm := connectify.NewAccountStateMachine(repo,
		connectify.WithStateMachineActivitySink(sink),
		connectify.WithStateMachineClock(func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		}),
	)

	result, err := sm.Transition(context.Background(), connectify.ActorRef{ID: "system"}, user, connectify.AccountStatusVerified)
	require.NoError(t, err)
	assert.Equal(t, connectify.AccountStatusVerified, result.Status)
	assert.True(t, result.IsVerified)

	require.Len(t, sink.events, 1)
	assert.Equal(t, connectify.ActivityEventAccountStatusChanged, sink.events[0].EventType)
	assert.Equal(t, connectify.AccountStatusPending, sink.events[0].FromStatus)
	assert.Equal(t, connectify.AccountStatusVerified, sink.events[0].ToStatus)
	repo.AssertExpectations(t)
}

func TestAccountStateMachineVerifiedIsTerminal(t *testing.T) {
	repo := &MockUsers{}
	user := &connectify.User{
		ID:         uuid.New(),
		Status:     connectify.AccountStatusVerified,
		IsVerified: true,
	}

	sm := connectify.NewAccountStateMachine(repo)

	_, err := sm.Transition(context.Background(), connectify.ActorRef{ID: "admin"}, user, connectify.AccountStatusDisabled)
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrTerminalState)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountStateMachineRejectsInvalidTransition(t *testing.T) {
	repo := &MockUsers{}
	user := &connectify.User{
		ID:     uuid.New(),
		Status: connectify.AccountStatusDisabled,
	}

	sm := connectify.NewAccountStateMachine(repo)

	_, err := sm.Transition(context.Background(), connectify.ActorRef{}, user, connectify.AccountStatusVerified)
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrInvalidTransition)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountStateMachineNoopOnSameStatus(t *testing.T) {
	repo := &MockUsers{}
	user := &connectify.User{
		ID:     uuid.New(),
		Status: connectify.AccountStatusPending,
	}

	sm := connectify.NewAccountStateMachine(repo)

	result, err := sm.Transition(context.Background(), connectify.ActorRef{}, user, connectify.AccountStatusPending)
	require.NoError(t, err)
	assert.Equal(t, connectify.AccountStatusPending, result.Status)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountStateMachineForceBypassesTerminal(t *testing.T) {
	repo := &MockUsers{}
	user := &connectify.User{
		ID:         uuid.New(),
		Status:     connectify.AccountStatusVerified,
		IsVerified: true,
	}

	repo.On("UpdateStatus", mock.Anything, user.ID, connectify.AccountStatusDisabled).
		Return(&connectify.User{ID: user.ID, Status: connectify.AccountStatusDisabled}, nil).Once()

	sm := connectify.NewAccountStateMachine(repo)

	result, err := sm.Transition(
		context.Background(),
		connectify.ActorRef{ID: "admin"},
		user,
		connectify.AccountStatusDisabled,
		connectify.WithForceTransition(),
		connectify.WithTransitionReason("abuse takedown"),
	)
	require.NoError(t, err)
	assert.Equal(t, connectify.AccountStatusDisabled, result.Status)
	repo.AssertExpectations(t)
}

func TestAccountStateMachineHooksRun(t *testing.T) {
	repo := &MockUsers{}
	user := &connectify.User{
		ID:     uuid.New(),
		Status: connectify.AccountStatusPending,
	}

	repo.On("UpdateStatus", mock.Anything, user.ID, connectify.AccountStatusDisabled).
		Return(&connectify.User{ID: user.ID, Status: connectify.AccountStatusDisabled}, nil).Once()

	sm := connectify.NewAccountStateMachine(repo)

	var phases []string
	_, err := sm.Transition(
		context.Background(),
		connectify.ActorRef{ID: "admin"},
		user,
		connectify.AccountStatusDisabled,
		connectify.WithBeforeTransitionHook(func(ctx context.Context, tc connectify.TransitionContext) error {
			phases = append(phases, "before")
			return nil
		}),
		connectify.WithAfterTransitionHook(func(ctx context.Context, tc connectify.TransitionContext) error {
			phases = append(phases, "after")
			return nil
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after"}, phases)
}

func TestCanTransition(t *testing.T) {
	sm := connectify.NewAccountStateMachine(&MockUsers{})

	assert.True(t, sm.CanTransition(connectify.AccountStatusPending, connectify.AccountStatusVerified))
	assert.True(t, sm.CanTransition(connectify.AccountStatusPending, connectify.AccountStatusDisabled))
	assert.True(t, sm.CanTransition(connectify.AccountStatusDisabled, connectify.AccountStatusPending))
	assert.False(t, sm.CanTransition(connectify.AccountStatusVerified, connectify.AccountStatusDisabled))
	assert.False(t, sm.CanTransition(connectify.AccountStatusDisabled, connectify.AccountStatusVerified))
}
