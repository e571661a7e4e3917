package notify

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
)

type NotifyTestSuite struct {
	suite.Suite
}

func TestNotifySuite(t *testing.T) {
	suite.Run(t, new(NotifyTestSuite))
}

func (s *NotifyTestSuite) TestChatNotifierPostsText() {
	var got chatMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("application/json", r.Header.Get("Content-Type"))
		s.NoError(json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	text := gofakeit.Sentence(6)
	err := NewChatNotifier(server.URL, time.Second).Notify(s.T().Context(), text)
	s.Require().NoError(err)
	s.Equal(text, got.Text)
}

func (s *NotifyTestSuite) TestChatNotifierStatusError() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewChatNotifier(server.URL, time.Second).Notify(s.T().Context(), "order #1 is now paid")
	s.Require().Error(err)
	s.Contains(err.Error(), "502")
}

func (s *NotifyTestSuite) TestMailerSkipsDoneContext() {
	accepted := make(chan struct{}, 1)
	host, port := s.listen(func(conn net.Conn) {
		accepted <- struct{}{}
		_ = conn.Close()
	})
	mailer := NewMailer(SMTPConfig{Host: host, Port: port, From: "ledger@example.com"})
	ctx, cancel := context.WithCancel(s.T().Context())
	cancel()

	err := mailer.Send(ctx, gofakeit.Email(), "subject", "body")
	s.Require().ErrorIs(err, context.Canceled)
	s.NotErrorIs(err, ErrDeliveryUnknown)
	select {
	case <-accepted:
		s.Fail("mailer dialed with a done context")
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *NotifyTestSuite) TestMailerStalledExchangeIsUnknown() {
	release := make(chan struct{})
	defer close(release)
	// accepts and never sends the SMTP greeting
	host, port := s.listen(func(conn net.Conn) {
		<-release
		_ = conn.Close()
	})
	mailer := NewMailer(SMTPConfig{Host: host, Port: port, From: "ledger@example.com"})
	ctx, cancel := context.WithTimeout(s.T().Context(), 100*time.Millisecond)
	defer cancel()

	err := mailer.Send(ctx, gofakeit.Email(), "subject", "body")
	s.Require().ErrorIs(err, ErrDeliveryUnknown)
	s.Require().ErrorIs(err, context.DeadlineExceeded)
}

// listen serves every accepted connection with handle and returns the listener address.
func (s *NotifyTestSuite) listen(handle func(net.Conn)) (string, int) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, acceptErr := ln.Accept()
			if acceptErr != nil {
				return
			}
			go handle(conn)
		}
	}()
	addr, ok := ln.Addr().(*net.TCPAddr)
	s.Require().True(ok)
	return addr.IP.String(), addr.Port
}

func (s *NotifyTestSuite) TestLogFallbacks() {
	logger, hook := test.NewNullLogger()

	s.Require().NoError(NewLogMailer(logger).Send(s.T().Context(), "a@example.com", "hi", "body"))
	s.Require().NotNil(hook.LastEntry())
	s.Equal(logrus.InfoLevel, hook.LastEntry().Level)
	s.Equal("a@example.com", hook.LastEntry().Data["to"])

	s.Require().NoError(NewLogNotifier(logger).Notify(s.T().Context(), "hello"))
	s.Equal("hello", hook.LastEntry().Data["text"])
}
