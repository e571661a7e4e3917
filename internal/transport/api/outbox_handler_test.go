package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
)

func (s *HandlersTestSuite) TestOutboxIndex() {
	event := domain.OutboxEvent{
		ID:            uuid.New(),
		Channel:       domain.OutboxChannelEmail,
		EventType:     domain.EventOrderFulfilled,
		AggregateType: domain.AggregateOrder,
		AggregateID:   4,
		Payload:       json.RawMessage(`{"to":"a@b.c","body":"password: secret"}`),
		Status:        domain.OutboxStatusFailed,
		Attempts:      8,
		LastError:     "dial tcp: timeout",
		CreatedAt:     time.Now().UTC(),
	}
	s.outbox.EXPECT().List(gomock.Any(), domain.OutboxStatusFailed, uint(0)).Return([]domain.OutboxEvent{event}, nil)
	s.outbox.EXPECT().List(gomock.Any(), domain.OutboxStatusPending, uint(10)).Return(nil, nil)

	res := s.request(http.MethodGet, "/api/admin/outbox", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body []map[string]any
	s.decode(res, &body)
	s.Require().Len(body, 1)
	s.Equal(event.ID.String(), body[0]["id"])
	s.Equal("dial tcp: timeout", body[0]["last_error"])
	s.NotContains(body[0], "payload")

	res = s.request(http.MethodGet, "/api/admin/outbox?status=pending&limit=10", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	var empty []OutboxEventResponse
	s.decode(res, &empty)
	s.Empty(empty)

	res = s.request(http.MethodGet, "/api/admin/outbox?status=lost", s.adminToken, nil)
	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	_ = res.Body.Close()
}

func (s *HandlersTestSuite) TestOutboxResend() {
	eventID := uuid.New()
	warning := domain.NewNotificationError(eventID, domain.OutboxChannelChat, errors.New("chat is down"))

	s.outbox.EXPECT().Resend(gomock.Any(), service.ResendCommand{ActorID: adminID, EventID: eventID}).
		Return(&service.ResendResult{
			Event: &domain.OutboxEvent{
				ID:      eventID,
				Channel: domain.OutboxChannelChat,
				Status:  domain.OutboxStatusPending,
			},
			Warnings: []error{warning},
		}, nil)

	res := s.request(http.MethodPost, "/api/admin/outbox/"+eventID.String()+"/resend", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body ResendResponse
	s.decode(res, &body)
	s.Equal(eventID, body.Event.ID)
	s.Equal(domain.OutboxStatusPending, body.Event.Status)
	s.Equal([]string{warning.Error()}, body.Warnings)

	res = s.request(http.MethodPost, "/api/admin/outbox/not-a-uuid/resend", s.adminToken, nil)
	s.Equal(http.StatusNotFound, res.StatusCode)
	_ = res.Body.Close()

	missing := uuid.New()
	s.outbox.EXPECT().Resend(gomock.Any(), gomock.Any()).Return(nil, domain.ErrRecordNotFound)
	res = s.request(http.MethodPost, "/api/admin/outbox/"+missing.String()+"/resend", s.adminToken, nil)
	s.Equal(http.StatusNotFound, res.StatusCode)
	_ = res.Body.Close()
}

func (s *HandlersTestSuite) TestAuditHistory() {
	s.audit.EXPECT().History(gomock.Any(), "balance_request", int64(5), uint(20)).Return([]domain.AuditEntry{
		{ID: 2, ActorID: adminID, Action: "balance_request.approved", TargetType: "balance_request", TargetID: 5},
	}, nil)

	res := s.request(http.MethodGet, "/api/admin/audit/balance_request/5?limit=20", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body []AuditEntryResponse
	s.decode(res, &body)
	s.Require().Len(body, 1)
	s.Equal("balance_request.approved", body[0].Action)
	s.Equal(adminID, body[0].ActorID)
}
