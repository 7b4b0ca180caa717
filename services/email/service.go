package emailsvc

import "github.com/trezcool/academy/core"

type noopService struct{}

var _ core.EmailService = noopService{}

// NewNoopService drops every message.
func NewNoopService() core.EmailService {
	return noopService{}
}

func (noopService) SendMessages(...*core.EmailMessage) {}

// NewService picks the sender matching conf:
// nothing when notifications are off (or SendGrid is unconfigured outside debug),
// the console in debug without an API key, SendGrid otherwise.
func NewService(conf *core.Config, tmpls *core.EmailTemplates, logger core.Logger) core.EmailService {
	switch {
	case !conf.Flags.EmailNotifications:
		return NewNoopService()
	case conf.Email.SendgridAPIKey == "" && conf.Debug:
		return NewConsoleService(conf, tmpls, logger)
	case conf.Email.SendgridAPIKey == "":
		logger.Warn("SENDGRID_API_KEY is not set: emails are disabled")
		return NewNoopService()
	default:
		return NewSendgridService(conf, tmpls, logger)
	}
}
