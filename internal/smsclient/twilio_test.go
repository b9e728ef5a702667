package smsclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbtn/compliance-audit/internal/collector"
	"github.com/vbtn/compliance-audit/internal/config"
	"github.com/vbtn/compliance-audit/internal/smsclient"
)

func TestListSince(t *testing.T) {
	t.Parallel()

	var gotPath, gotTo, gotSince, gotPageSize string
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTo = r.URL.Query().Get("To")
		gotSince = r.URL.Query().Get("DateSent>")
		gotPageSize = r.URL.Query().Get("PageSize")
		gotUser, gotPass, _ = r.BasicAuth()
		_, _ = w.Write([]byte(`{"messages":[
			{"sid":"SM1","from":"+15550001111","to":"+15552223333","body":"hello","date_sent":"Fri, 14 Mar 2025 09:26:53 +0000"},
			{"sid":"SM2","from":"+15550001111","to":"+15552223333","body":"again","date_sent":"Fri, 14 Mar 2025 10:00:00 +0000"}
		]}`))
	}))
	defer srv.Close()

	tw := smsclient.New(config.SMS{SID: "AC123", Token: "secret"}, smsclient.WithBaseURL(srv.URL))
	since := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	msgs, err := tw.ListSince(context.Background(), "+15552223333", since)
	require.NoError(t, err)

	assert.Equal(t, "/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "+15552223333", gotTo)
	assert.Equal(t, "2025-03-14", gotSince)
	assert.Equal(t, "1000", gotPageSize)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "secret", gotPass)

	require.Len(t, msgs, 2)
	assert.Equal(t, collector.Message{
		SID:      "SM1",
		From:     "+15550001111",
		To:       "+15552223333",
		Body:     "hello",
		DateSent: "Fri, 14 Mar 2025 09:26:53 +0000",
	}, msgs[0])
}

func TestListSinceEmptyPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[]}`))
	}))
	defer srv.Close()

	tw := smsclient.New(config.SMS{SID: "AC123", Token: "secret"}, smsclient.WithBaseURL(srv.URL))
	msgs, err := tw.ListSince(context.Background(), "+15552223333", time.Now())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestListSinceErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		status int
		body   string

		wantInError string
	}{
		"Unauthorized": {status: http.StatusUnauthorized, body: "authentication required", wantInError: "unexpected status 401"},
		"Bad payload":  {status: http.StatusOK, body: "not json", wantInError: "failed to parse message list"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			tw := smsclient.New(config.SMS{SID: "AC123", Token: "secret"}, smsclient.WithBaseURL(srv.URL))
			_, err := tw.ListSince(context.Background(), "+15552223333", time.Now())
			require.ErrorContains(t, err, tc.wantInError)
		})
	}
}

func TestListSinceTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	tw := smsclient.New(config.SMS{SID: "AC123", Token: "secret"}, smsclient.WithBaseURL(url))
	_, err := tw.ListSince(context.Background(), "+15552223333", time.Now())
	require.ErrorContains(t, err, "request failed")
}
