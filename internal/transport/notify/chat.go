package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ChatNotifier posts messages to a chat incoming webhook, Slack and Mattermost accept the same {"text": ...}
// body.
type ChatNotifier struct {
	url        string
	httpClient *http.Client
}

func NewChatNotifier(url string, timeout time.Duration) *ChatNotifier {
	return &ChatNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Text string `json:"text"`
}

//nolint:nonamedreturns
func (n *ChatNotifier) Notify(ctx context.Context, text string) (err error) {
	body, marshalErr := json.Marshal(chatMessage{Text: text})
	if marshalErr != nil {
		return errors.Wrap(marshalErr, "marshal chat message")
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if reqErr != nil {
		return errors.Wrap(reqErr, "create chat request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := n.httpClient.Do(req)
	if doErr != nil {
		return errors.Wrap(doErr, "post chat message")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close chat response")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("post chat message: unexpected status code %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes chat messages to the log. Used when no chat webhook is configured.
type LogNotifier struct {
	l *logrus.Entry
}

func NewLogNotifier(l *logrus.Logger) *LogNotifier {
	return &LogNotifier{l: l.WithFields(logrus.Fields{"component": "notify", "module": "log_chat"})}
}

func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.l.WithField("text", text).Info("chat message not sent, chat webhook is not configured")
	return nil
}
