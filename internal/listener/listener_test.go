package listener

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ledgerchat/internal"
	"ledgerchat/internal/config"
	"ledgerchat/internal/session"
	"ledgerchat/internal/storage"
)

type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error) {
	args := m.Called(label, max)
	return args.Get(0).([]internal.FetchedMailMessage), args.Error(1)
}

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadPendingMail(ctx context.Context, limit int) (session.MailLoadResult, error) {
	args := m.Called(limit)
	return args.Get(0).(session.MailLoadResult), args.Error(1)
}

func newTestService(t *testing.T, conn *MockConnector, loader *MockLoader) *Service {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		RawMailDir:               t.TempDir(),
		MailListenerProvider:     "imap",
		MailListenerLabel:        "INBOX",
		MailListenerIntervalSec:  1,
		MailListenerFetchMax:     5,
		MailListenerProcessBatch: 7,
	}
	return NewService(db, cfg, conn, loader, nil)
}

func TestRunCycleFetchesThenLoads(t *testing.T) {
	conn := new(MockConnector)
	loader := new(MockLoader)
	conn.On("FetchInbox", "INBOX", 5).Return([]internal.FetchedMailMessage{
		{Provider: "imap", MessageID: "<1@x>", Raw: []byte("Subject: a\r\n\r\nbody")},
	}, nil).Once()
	loader.On("LoadPendingMail", 7).Return(session.MailLoadResult{Skipped: 1}, nil).Once()

	svc := newTestService(t, conn, loader)
	require.NoError(t, svc.RunCycle(context.Background()))

	conn.AssertExpectations(t)
	loader.AssertExpectations(t)

	row, err := svc.db.GetEmailByProviderMessageID("imap", "<1@x>")
	require.NoError(t, err)
	require.NotNil(t, row)
}

func TestRunStopsOnCancel(t *testing.T) {
	// the db is closed in t.Cleanup, after this check runs
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	conn := new(MockConnector)
	loader := new(MockLoader)
	conn.On("FetchInbox", "INBOX", 5).Return([]internal.FetchedMailMessage{}, nil)
	loader.On("LoadPendingMail", 7).Return(session.MailLoadResult{}, nil)

	svc := newTestService(t, conn, loader)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("listener did not stop")
	}
	conn.AssertCalled(t, "FetchInbox", "INBOX", 5)
}
