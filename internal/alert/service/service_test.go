package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"talentgate/internal/alert/channel"
	"talentgate/internal/alert/models"
	"talentgate/internal/alert/service/mocks"
	"talentgate/internal/alert/store"
	"talentgate/internal/audit"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/upstream"
	"talentgate/pkg/requestcontext"
)

type stubSender struct {
	ch   models.Channel
	err  error
	mu   sync.Mutex
	sent []models.Alert
}

func (s *stubSender) Channel() models.Channel { return s.ch }

func (s *stubSender) Send(_ context.Context, alert models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, alert)
	return s.err
}

type DispatcherSuite struct {
	suite.Suite
	store      *store.InMemoryStore
	auditStore *audit.InMemoryStore
	auditor    *audit.Publisher
	logger     *slog.Logger
	now        time.Time
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.store = store.New()
	s.auditStore = audit.NewInMemoryStore(audit.DefaultRetention)
	s.auditor = audit.NewPublisher(s.auditStore)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.now = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
}

func (s *DispatcherSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *DispatcherSuite) newAlert(id string, ts time.Time) models.Alert {
	return models.Alert{
		ID:         id,
		Timestamp:  ts,
		Type:       models.TypeNewTalent,
		Priority:   models.PriorityMedium,
		SubjectID:  "ath-1",
		Title:      "New talent",
		Recipients: []string{"coach-1"},
	}
}

func (s *DispatcherSuite) notificationEntries() []audit.Entry {
	entries, err := s.auditStore.List(context.Background(), audit.Filter{
		Action:   audit.ActionAccess,
		DataType: audit.DataNotification,
	})
	s.Require().NoError(err)
	return entries
}

func (s *DispatcherSuite) TestDeliverOneChannelSucceeds() {
	failing := &stubSender{ch: models.ChannelEmail, err: dErrors.Wrap(
		upstream.New(upstream.CategoryOutage, "email", "down", nil), dErrors.CodeDeliveryFailed, "email delivery failed")}
	ok := &stubSender{ch: models.ChannelDashboard}
	svc := NewService(s.store, []channel.Sender{failing, ok}, s.auditor, s.logger)

	delivered, err := svc.Deliver(s.ctx(), s.newAlert("", time.Time{}))
	s.Require().NoError(err)
	s.True(delivered)

	s.Require().Len(ok.sent, 1)
	stored, err := svc.Get(s.ctx(), ok.sent[0].ID)
	s.Require().NoError(err)
	s.True(stored.Delivered)
	s.Equal(s.now, stored.Timestamp)

	entries := s.notificationEntries()
	s.Require().Len(entries, 2)
	var successes int
	for _, e := range entries {
		s.Equal("notification", e.Purpose)
		if e.Success {
			successes++
		}
	}
	s.Equal(1, successes)
}

func (s *DispatcherSuite) TestDeliverAllChannelsFailStillPersists() {
	failing := &stubSender{ch: models.ChannelSMS, err: errors.New("relay down")}
	svc := NewService(s.store, []channel.Sender{failing}, s.auditor, s.logger)

	delivered, err := svc.Deliver(s.ctx(), s.newAlert("a-1", s.now))
	s.Require().NoError(err)
	s.False(delivered)

	stored, err := svc.Get(s.ctx(), "a-1")
	s.Require().NoError(err)
	s.False(stored.Delivered)
	s.Len(s.notificationEntries(), 1)
}

func (s *DispatcherSuite) TestDeliverWithNoChannels() {
	svc := NewService(s.store, nil, s.auditor, s.logger)

	delivered, err := svc.Deliver(s.ctx(), s.newAlert("a-1", s.now))
	s.Require().NoError(err)
	s.False(delivered)

	stored, err := svc.Get(s.ctx(), "a-1")
	s.Require().NoError(err)
	s.False(stored.Delivered)
	s.Empty(s.notificationEntries())
}

func (s *DispatcherSuite) TestDeliverRejectsMissingSubject() {
	svc := NewService(s.store, nil, s.auditor, s.logger)
	alert := s.newAlert("a-1", s.now)
	alert.SubjectID = " "

	_, err := svc.Deliver(s.ctx(), alert)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *DispatcherSuite) TestDeliverPersistFailureSkipsChannels() {
	ctrl := gomock.NewController(s.T())
	mockStore := mocks.NewMockStore(ctrl)
	mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	sender := &stubSender{ch: models.ChannelPush}
	svc := NewService(mockStore, []channel.Sender{sender}, s.auditor, s.logger)

	delivered, err := svc.Deliver(s.ctx(), s.newAlert("a-1", s.now))
	s.False(delivered)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Empty(sender.sent)
}

func (s *DispatcherSuite) TestQueryFiltersAndOrders() {
	svc := NewService(s.store, nil, s.auditor, s.logger)
	older := s.newAlert("a-old", s.now.Add(-time.Hour))
	newer := s.newAlert("a-new", s.now)
	elite := s.newAlert("a-elite", s.now.Add(-30*time.Minute))
	elite.Type = models.TypeEliteThreshold
	elite.Priority = models.PriorityHigh
	for _, a := range []models.Alert{older, newer, elite} {
		_, err := svc.Deliver(s.ctx(), a)
		s.Require().NoError(err)
	}

	all, err := svc.Query(s.ctx(), models.Filter{})
	s.Require().NoError(err)
	s.Equal([]string{"a-new", "a-elite", "a-old"}, ids(all))

	high, err := svc.Query(s.ctx(), models.Filter{Priority: models.PriorityHigh})
	s.Require().NoError(err)
	s.Equal([]string{"a-elite"}, ids(high))

	limited, err := svc.Query(s.ctx(), models.Filter{Limit: 1})
	s.Require().NoError(err)
	s.Equal([]string{"a-new"}, ids(limited))
}

func (s *DispatcherSuite) TestMarkReadIsIdempotent() {
	svc := NewService(s.store, nil, s.auditor, s.logger)
	_, err := svc.Deliver(s.ctx(), s.newAlert("a-1", s.now))
	s.Require().NoError(err)

	_, err = svc.MarkRead(s.ctx(), "a-1", "coach-1")
	s.Require().NoError(err)
	alert, err := svc.MarkRead(s.ctx(), "a-1", "coach-1")
	s.Require().NoError(err)
	s.Equal([]string{"coach-1"}, alert.ReadBy)

	unread, err := svc.Query(s.ctx(), models.Filter{UnreadFor: "coach-1"})
	s.Require().NoError(err)
	s.Empty(unread)
}

func (s *DispatcherSuite) TestMarkReadUnknownAlert() {
	svc := NewService(s.store, nil, s.auditor, s.logger)
	_, err := svc.MarkRead(s.ctx(), "missing", "coach-1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DispatcherSuite) TestArchiveHidesFromDefaultQuery() {
	svc := NewService(s.store, nil, s.auditor, s.logger)
	_, err := svc.Deliver(s.ctx(), s.newAlert("a-1", s.now))
	s.Require().NoError(err)

	archived, err := svc.Archive(s.ctx(), "a-1")
	s.Require().NoError(err)
	s.True(archived.Archived)

	visible, err := svc.Query(s.ctx(), models.Filter{})
	s.Require().NoError(err)
	s.Empty(visible)

	withArchived, err := svc.Query(s.ctx(), models.Filter{IncludeArchived: true})
	s.Require().NoError(err)
	s.Len(withArchived, 1)
}

func (s *DispatcherSuite) writeDetails() []string {
	entries, err := s.auditStore.List(context.Background(), audit.Filter{Action: audit.ActionWrite})
	s.Require().NoError(err)
	details := make([]string, 0, len(entries))
	for _, e := range entries {
		s.Equal([]string{audit.DataNotification}, e.DataTypes)
		s.Equal([]string{"ath-1"}, e.SubjectIDs)
		s.True(e.Success)
		details = append(details, e.Detail)
	}
	return details
}

func (s *DispatcherSuite) TestLifecycleChangesAreAudited() {
	svc := NewService(s.store, nil, s.auditor, s.logger)
	_, err := svc.Deliver(s.ctx(), s.newAlert("a-1", s.now))
	s.Require().NoError(err)
	s.Equal([]string{"persisted alert=a-1"}, s.writeDetails())

	_, err = svc.MarkRead(s.ctx(), "a-1", "coach-1")
	s.Require().NoError(err)
	_, err = svc.Archive(s.ctx(), "a-1")
	s.Require().NoError(err)

	s.ElementsMatch([]string{
		"persisted alert=a-1",
		"read by=coach-1 alert=a-1",
		"archived alert=a-1",
	}, s.writeDetails())
	s.Empty(s.notificationEntries(), "no channel attempts without senders")
}

func (s *DispatcherSuite) TestFailedLifecycleChangesAreNotAudited() {
	svc := NewService(s.store, nil, s.auditor, s.logger)
	_, err := svc.MarkRead(s.ctx(), "missing", "coach-1")
	s.Require().Error(err)
	_, err = svc.Archive(s.ctx(), "missing")
	s.Require().Error(err)
	s.Empty(s.writeDetails())
}

func (s *DispatcherSuite) TestInWindowIsHalfOpen() {
	svc := NewService(s.store, nil, s.auditor, s.logger)
	start := s.now.Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)
	for _, a := range []models.Alert{
		s.newAlert("at-start", start),
		s.newAlert("inside", start.Add(time.Hour)),
		s.newAlert("at-end", end),
	} {
		_, err := svc.Deliver(s.ctx(), a)
		s.Require().NoError(err)
	}

	alerts, err := svc.InWindow(s.ctx(), start, end)
	s.Require().NoError(err)
	s.Equal([]string{"inside", "at-start"}, ids(alerts))
}

func ids(alerts []models.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}
