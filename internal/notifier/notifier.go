package notifier

import "context"

// TemplateKey identifies a transactional email template in the mailer service
type TemplateKey string

const (
	// TemplateCaptureSuccess goes to the creator when every order captured
	TemplateCaptureSuccess TemplateKey = "presale-capture-success"
	// TemplateCapturePartial goes to the creator and admins when the retry
	// budget ran out with orders still uncaptured
	TemplateCapturePartial TemplateKey = "presale-capture-partial"
	// TemplateFailedBuyer goes to each buyer of a failed campaign
	TemplateFailedBuyer TemplateKey = "presale-failed-buyer"
	// TemplateFailedCreator tells the creator the release converts to digital
	TemplateFailedCreator TemplateKey = "presale-failed-creator"
)

// Notifier sends transactional emails through the mailer service. Calls are
// best-effort from the engine's perspective: a failure is logged and never
// rolls back a state transition.
//
//go:generate mockgen -source=notifier.go -destination=../mocks/notifier.go -package=mocks -mock_names=Notifier=MockNotifier
type Notifier interface {
	Send(ctx context.Context, recipient string, template TemplateKey, params map[string]string) error
}
