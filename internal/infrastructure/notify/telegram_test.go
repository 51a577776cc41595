package notify

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

func TestTelegram_Notify(t *testing.T) {
	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodPost, "https://api.telegram.org/botTOKEN/getMe",
		httpmock.NewStringResponder(http.StatusOK, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"beetles","username":"beetle_bot"}}`))

	var text string
	mock.RegisterResponder(http.MethodPost, "https://api.telegram.org/botTOKEN/sendMessage",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseForm())
			require.Equal(t, "42", req.PostForm.Get("chat_id"))
			text = req.PostForm.Get("text")
			return httpmock.NewStringResponse(http.StatusOK, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`), nil
		})

	tg, err := NewTelegram("TOKEN", 42, &http.Client{Transport: mock})
	require.NoError(t, err)
	require.NoError(t, tg.Notify(context.Background(), "detect: 3 crops"))
	require.Equal(t, "detect: 3 crops", text)
}

func TestTelegram_Unauthorized(t *testing.T) {
	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodPost, "https://api.telegram.org/botBAD/getMe",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"ok":false,"error_code":401,"description":"Unauthorized"}`))

	_, err := NewTelegram("BAD", 1, &http.Client{Transport: mock})
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	require.NoError(t, Noop{}.Notify(context.Background(), "anything"))
}
