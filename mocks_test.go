package connectify_test

import (
	"context"

	"github.com/connectify/connectify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUsers implements connectify.Users for the methods the state machine
// exercises. The embedded interface panics on anything unexpected.
type MockUsers struct {
	mock.Mock
	connectify.Users
}

func (m *MockUsers) UpdateStatus(ctx context.Context, id uuid.UUID, status connectify.AccountStatus) (*connectify.User, error) {
	args := m.Called(ctx, id, status)
	user, _ := args.Get(0).(*connectify.User)
	return user, args.Error(1)
}

// MockMailer implements connectify.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(to, code string) error {
	args := m.Called(to, code)
	return args.Error(0)
}

func (m *MockMailer) SendWelcomeEmail(to, username string) error {
	args := m.Called(to, username)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordResetEmail(to, link string) error {
	args := m.Called(to, link)
	return args.Error(0)
}

func (m *MockMailer) SendResetSuccessEmail(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

// collectSink gathers activity events for assertions.
type collectSink struct {
	events []connectify.ActivityEvent
}

func (s *collectSink) Record(_ context.Context, event connectify.ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}
