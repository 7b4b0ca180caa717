package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/tests"
)

func TestNewService(t *testing.T) {
	logger := testutil.Logger(t)

	tests := []struct {
		name   string
		conf   func(c *core.Config)
		wantFn func(t *testing.T, svc core.EmailService)
	}{
		{
			name: "notifications off",
			conf: func(c *core.Config) { c.Flags.EmailNotifications = false; c.Email.SendgridAPIKey = "key" },
			wantFn: func(t *testing.T, svc core.EmailService) {
				assert.IsType(t, noopService{}, svc)
			},
		},
		{
			name: "debug without key",
			conf: func(c *core.Config) { c.Debug = true },
			wantFn: func(t *testing.T, svc core.EmailService) {
				assert.IsType(t, &consoleService{}, svc)
			},
		},
		{
			name: "prod without key",
			conf: func(c *core.Config) { c.Debug = false },
			wantFn: func(t *testing.T, svc core.EmailService) {
				assert.IsType(t, noopService{}, svc)
			},
		},
		{
			name: "with key",
			conf: func(c *core.Config) { c.Debug = false; c.Email.SendgridAPIKey = "key" },
			wantFn: func(t *testing.T, svc core.EmailService) {
				assert.IsType(t, &sendgridService{}, svc)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := core.NewTestConfig()
			tt.conf(conf)
			tt.wantFn(t, NewService(conf, nil, logger))
		})
	}
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, testutil.EmailTemplates(t, conf), testutil.Logger(t))
	ResetSentMessages()

	to := mail.Address{Name: "Jane Doe", Address: "jane@example.com"}
	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{to},
			Subject:      "Please confirm your email",
			TemplateName: "registration_welcome",
			TemplateData: map[string]string{"Name": to.Name, "Role": "parent", "VerifyURL": "http://academy.test/verify?token=abc"},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{to}, Subject: "plain", BodyStr: "hello"},
	)

	sent := GetSentMessages()
	require.Len(t, sent, 2)

	welcome := sent[0]
	assert.Equal(t, []mail.Address{to}, welcome.To)
	for _, content := range []string{welcome.TextContent, welcome.HTMLContent} {
		assert.True(t, strings.Contains(content, to.Name), "content does not contain the recipient's name")
		assert.True(t, strings.Contains(content, "verify?token=abc"), "content does not contain the verification link")
	}

	assert.Equal(t, "hello", sent[1].TextContent)
	assert.Empty(t, sent[1].HTMLContent)
}
