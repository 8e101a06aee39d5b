package form

import (
	"time"
)

// Accepted upload types
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain"
)

// Input holds the typed email fields
type Input struct {
	From    string
	Subject string
	Body    string
}

// UploadedFile is a document picked by the user
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Submission is what gets sent to the classification service. Exactly one
// of Fields and File is set.
type Submission struct {
	Fields *Input
	File   *UploadedFile
}

// Phase is the state of the current submission cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NotificationKind tells success toasts from error toasts
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient message shown to the user
type Notification struct {
	Kind      NotificationKind
	Message   string
	AutoClose time.Duration
}

// User facing messages
const (
	MessageSuggestionFailed = "Erro ao gerar resposta: a API do Gemini apresentou instabilidade. Aguarde alguns instantes e tente novamente."
	MessageEmailSent        = "Email enviado com sucesso!"
	MessageUnreadableUpload = "Não foi possível ler o arquivo enviado. Verifique o tamanho e tente novamente."
)

// View is a read-only copy of the controller state for rendering
type View struct {
	Input          Input
	FileName       string
	Phase          Phase
	Loading        bool
	ShowResult     bool
	CanSubmit      bool
	Classification string
	SuggestedReply string
	EditMode       bool
	EditedReply    string
	PickerKey      int
}
