package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_Send(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
	}{
		{name: "sent"},
		{name: "smtp failure", sendErr: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sender := NewMockSender(ctrl)
			sender.EXPECT().Send(gomock.Not(gomock.Nil())).Return(tt.sendErr)

			m := NewWithSender(sender, "lireddit", "noreply@lireddit.dev")
			err := m.Send(context.Background(), "bob@example.com", "Change password", "<a>reset</a>")
			if tt.sendErr != nil {
				assert.ErrorIs(t, err, tt.sendErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMailer_CanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewWithSender(sender, "", "noreply@lireddit.dev")
	assert.ErrorIs(t, m.Send(ctx, "bob@example.com", "s", "b"), context.Canceled)
}

func TestNew_Disabled(t *testing.T) {
	m, err := New(Config{})
	require.NoError(t, err)

	assert.NoError(t, m.Send(context.Background(), "bob@example.com", "s", "b"))
}

func TestNew_InvalidFrom(t *testing.T) {
	_, err := New(Config{Host: "smtp.example.com:465", From: "not an address"})
	assert.Error(t, err)
}
