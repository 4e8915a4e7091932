package inquiry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"contactdesk/internal/common"
	"contactdesk/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

type memoryStore struct {
	mu      sync.Mutex
	items   []*Inquiry
	nextID  int64
	failErr error
	clock   func() time.Time
}

func (m *memoryStore) Create(ctx context.Context, inq *Inquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.nextID++
	inq.ID = m.nextID
	if m.clock != nil {
		inq.CreatedAt = m.clock()
	}
	m.items = append(m.items, inq)
	return nil
}

func (m *memoryStore) List(ctx context.Context) ([]*Inquiry, error) {
	return m.ListSince(ctx, time.Time{})
}

func (m *memoryStore) ListSince(ctx context.Context, since time.Time) ([]*Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []*Inquiry
	for i := len(m.items) - 1; i >= 0; i-- {
		if !m.items[i].CreatedAt.Before(since) {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

type recordingNotifier struct {
	calls     []notification.Target
	secondary []string
	report    *notification.DispatchReport
	err       error
}

func (r *recordingNotifier) NotifyAll(ctx context.Context, primary notification.Target, secondary string) (*notification.DispatchReport, error) {
	r.calls = append(r.calls, primary)
	r.secondary = append(r.secondary, secondary)
	if r.report != nil {
		return r.report, r.err
	}
	report := &notification.DispatchReport{
		Primary: notification.DispatchOutcome{Recipient: primary.Recipient, Succeeded: true},
	}
	if secondary != "" {
		report.Secondary = append(report.Secondary, notification.DispatchOutcome{Recipient: secondary, Succeeded: true})
	}
	return report, r.err
}

type stubLimiter struct {
	allowed bool
	err     error
	seen    []string
}

func (s *stubLimiter) Allow(ctx context.Context, recipient string) (bool, error) {
	s.seen = append(s.seen, recipient)
	return s.allowed, s.err
}

type mapSource map[string]string

func (m mapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func validRequest() *SubmitRequest {
	return &SubmitRequest{
		Name:    "山田太郎",
		Email:   "a@b.com",
		Subject: "質問",
		Message: "テスト",
	}
}

func TestSubmitNotifiesSubmitterAndAdmin(t *testing.T) {
	created := time.Date(2024, 1, 15, 1, 30, 0, 0, time.UTC)
	store := &memoryStore{clock: func() time.Time { return created }}
	notifier := &recordingNotifier{}
	svc := NewService(store, notifier, nil, mapSource{AdminEmailKey: "admin@example.com"}, jst)

	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.True(t, resp.EmailSent)
	assert.Empty(t, resp.Warning)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "a@b.com", notifier.calls[0].Recipient)
	assert.Equal(t, "admin@example.com", notifier.secondary[0])

	params := notifier.calls[0].Params
	assert.Equal(t, "山田太郎", params[notification.FieldName])
	assert.Equal(t, "", params[notification.FieldCompany])
	assert.Equal(t, "2024/01/15 10:30", params[notification.FieldSubmittedAt])
}

func TestSubmitWithoutAdminAddress(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(&memoryStore{}, notifier, nil, mapSource{}, jst)

	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.EmailSent)
	assert.False(t, resp.CreatedAt.IsZero())
	assert.Equal(t, []string{""}, notifier.secondary)
}

func TestSubmitPrimaryFailureAddsWarning(t *testing.T) {
	notifier := &recordingNotifier{report: &notification.DispatchReport{
		Primary: notification.DispatchOutcome{
			Recipient: "a@b.com",
			Err:       common.NewProviderError("smtp", "connection refused"),
		},
		Secondary: []notification.DispatchOutcome{{Recipient: "admin@example.com", Succeeded: true}},
	}}
	store := &memoryStore{}
	svc := NewService(store, notifier, nil, nil, jst)

	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.EmailSent)
	assert.Equal(t, MsgEmailWarning, resp.Warning)
	assert.Len(t, store.items, 1)
}

func TestSubmitSecondaryFailureKeepsEmailSent(t *testing.T) {
	notifier := &recordingNotifier{report: &notification.DispatchReport{
		Primary: notification.DispatchOutcome{Recipient: "a@b.com", Succeeded: true},
		Secondary: []notification.DispatchOutcome{{
			Recipient: "admin@example.com",
			Err:       errors.New("quota exceeded"),
		}},
	}}
	svc := NewService(&memoryStore{}, notifier, nil, nil, jst)

	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.EmailSent)
	assert.Empty(t, resp.Warning)
}

func TestSubmitConfigurationErrorIsNotFatal(t *testing.T) {
	cfgErr := &notification.ConfigurationError{Type: notification.TypeConfirmation, Field: "text", Reason: "broken"}
	notifier := &recordingNotifier{
		report: &notification.DispatchReport{Primary: notification.DispatchOutcome{Err: cfgErr}},
		err:    cfgErr,
	}
	store := &memoryStore{}
	svc := NewService(store, notifier, nil, nil, jst)

	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.EmailSent)
	assert.Equal(t, MsgEmailWarning, resp.Warning)
	assert.Len(t, store.items, 1)
}

func TestSubmitStoreFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(&memoryStore{failErr: errors.New("db down")}, notifier, nil, nil, jst)

	_, err := svc.Submit(context.Background(), validRequest())
	require.Error(t, err)
	assert.Empty(t, notifier.calls)
}

func TestSubmitRateLimited(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	store := &memoryStore{}
	svc := NewService(store, &recordingNotifier{}, limiter, nil, jst)

	_, err := svc.Submit(context.Background(), validRequest())
	require.Error(t, err)

	var tooMany *common.TooManyRequestsError
	assert.True(t, errors.As(err, &tooMany))
	assert.Empty(t, store.items)
	assert.Equal(t, []string{"a@b.com"}, limiter.seen)
}

func TestSubmitRateLimiterErrorFailsOpen(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	store := &memoryStore{}
	svc := NewService(store, &recordingNotifier{}, limiter, nil, jst)

	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, resp.EmailSent)
	assert.Len(t, store.items, 1)
}

func TestWeeklySummary(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, jst)
	store := &memoryStore{}
	// 1/8 23:59 falls outside the window; 1/12 15:00 UTC is 1/13 in JST.
	store.items = []*Inquiry{
		{ID: 1, CreatedAt: time.Date(2024, 1, 8, 23, 59, 0, 0, jst)},
		{ID: 2, CreatedAt: time.Date(2024, 1, 9, 0, 0, 0, 0, jst)},
		{ID: 3, CreatedAt: time.Date(2024, 1, 12, 15, 0, 0, 0, time.UTC)},
		{ID: 4, CreatedAt: time.Date(2024, 1, 15, 9, 0, 0, 0, jst)},
		{ID: 5, CreatedAt: time.Date(2024, 1, 15, 11, 0, 0, 0, jst)},
	}

	svc := NewService(store, &recordingNotifier{}, nil, nil, jst)
	svc.now = func() time.Time { return now }

	summary, err := svc.WeeklySummary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Days, 7)
	assert.Equal(t, "1/9", summary.Days[0].Day)
	assert.Equal(t, "2024-01-09", summary.Days[0].Date)
	assert.Equal(t, "1/15", summary.Days[6].Day)

	counts := make([]int, 0, 7)
	for _, d := range summary.Days {
		counts = append(counts, d.Count)
	}
	assert.Equal(t, []int{1, 0, 0, 0, 1, 0, 2}, counts)
	assert.Equal(t, 4, summary.Total)
}

func TestListReturnsEmptySlice(t *testing.T) {
	svc := NewService(&memoryStore{}, &recordingNotifier{}, nil, nil, jst)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
