package notification

// NotificationType identifies which template a rendered message is built from.
type NotificationType string

const (
	// TypeConfirmation is sent to the person who submitted an inquiry.
	TypeConfirmation NotificationType = "confirmation"

	// TypeAdminNotification alerts the configured administrator about a new inquiry.
	TypeAdminNotification NotificationType = "admin_notification"
)

// allTypes is the fixed set of notification types. Template defaults must cover every entry.
var allTypes = []NotificationType{
	TypeConfirmation,
	TypeAdminNotification,
}

// AllTypes returns every recognized notification type.
func AllTypes() []NotificationType {
	out := make([]NotificationType, len(allTypes))
	copy(out, allTypes)
	return out
}

// IsValidType checks whether a notification type is recognized.
func IsValidType(t NotificationType) bool {
	for _, known := range allTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Parameter field names understood by the default templates.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldSubject     = "subject"
	FieldCompany     = "company"
	FieldDepartment  = "department"
	FieldPhone       = "phone"
	FieldMessage     = "message"
	FieldSubmittedAt = "submittedAt"
)

// knownFields lists every recognized field and whether it is optional.
var knownFields = map[string]bool{
	FieldName:        false,
	FieldEmail:       false,
	FieldSubject:     true,
	FieldCompany:     true,
	FieldDepartment:  true,
	FieldPhone:       true,
	FieldMessage:     false,
	FieldSubmittedAt: false,
}

// IsOptionalField reports whether a recognized field may legitimately be left empty.
func IsOptionalField(name string) bool {
	return knownFields[name]
}

// KnownFields returns the recognized parameter field names.
func KnownFields() []string {
	out := make([]string, 0, len(knownFields))
	for name := range knownFields {
		out = append(out, name)
	}
	return out
}

// NotProvided is substituted for optional fields that were submitted empty.
const NotProvided = "未入力"

// Parameters maps field names to the values substituted into a template.
// A missing key and an empty value are distinct: see the renderer for how each is treated.
type Parameters map[string]string

// Present reports whether key is set to a non-empty value.
func (p Parameters) Present(key string) bool {
	return p[key] != ""
}

// With returns a copy of p with key set to value. The receiver is left untouched.
func (p Parameters) With(key, value string) Parameters {
	out := make(Parameters, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = value
	return out
}

// TemplateSource holds the raw subject, text, and html templates for one notification type.
type TemplateSource struct {
	Subject string
	Text    string
	HTML    string
}

// RenderedMessage is a fully evaluated template, ready to be addressed and sent.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// Message is the addressed message handed to a Transport.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
	Text    string
}

// RecipientRole distinguishes the authoritative send from informational ones.
type RecipientRole string

const (
	RolePrimary   RecipientRole = "primary"
	RoleSecondary RecipientRole = "secondary"
)

// DispatchOutcome records the result of one send attempt.
type DispatchOutcome struct {
	Recipient  string           `json:"recipient"`
	Type       NotificationType `json:"type"`
	Role       RecipientRole    `json:"role"`
	Succeeded  bool             `json:"succeeded"`
	ProviderID string           `json:"provider_id,omitempty"`
	Err        error            `json:"-"`
}

// ErrorMessage returns the failure reason, or an empty string on success.
func (o DispatchOutcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// DispatchReport aggregates every outcome for one inquiry.
// Primary is authoritative for the caller; Secondary entries are informational.
type DispatchReport struct {
	Primary   DispatchOutcome   `json:"primary"`
	Secondary []DispatchOutcome `json:"secondary"`
}

// Target pairs a recipient address with the parameters rendered for it.
type Target struct {
	Recipient string
	Params    Parameters
}
