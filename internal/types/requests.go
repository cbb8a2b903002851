package types

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names so callers can map errors back to payload keys.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs struct-tag validation and converts the first failure
// into a ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Message: describeTag(fe)}
	}
	return &ValidationError{Message: err.Error()}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// optionalField pairs a JSON field name with its optional value.
type optionalField struct {
	name  string
	value *string
}

// trimOptional trims the provided fields in order and rejects the first one
// that is provided but blank.
func trimOptional(fields ...optionalField) error {
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return &ValidationError{Field: f.name, Message: "must not be blank"}
		}
	}
	return nil
}

// CreateJobRequest is the payload for creating a job description.
type CreateJobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Company     string `json:"company" validate:"required,max=200"`
	Location    string `json:"location" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

// Validate trims the fields and checks required values.
func (r *CreateJobRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
	return validateStruct(r)
}

// UpdateJobRequest carries optional job field changes. The description is
// not editable once the job exists.
type UpdateJobRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200"`
}

// Validate trims the provided fields and checks their values.
func (r *UpdateJobRequest) Validate() error {
	if err := trimOptional(
		optionalField{"title", r.Title},
		optionalField{"company", r.Company},
		optionalField{"location", r.Location},
	); err != nil {
		return err
	}
	return validateStruct(r)
}

// Apply copies the provided fields onto job.
func (r *UpdateJobRequest) Apply(job *JobDescription) {
	if r.Title != nil {
		job.Title = *r.Title
	}
	if r.Company != nil {
		job.Company = *r.Company
	}
	if r.Location != nil {
		job.Location = *r.Location
	}
}

// CreateCandidateRequest is the payload for creating a candidate.
type CreateCandidateRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,max=50"`
}

// Validate trims the fields and checks required values.
func (r *CreateCandidateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	return validateStruct(r)
}

// UpdateCandidateRequest carries optional candidate field changes. A status
// change is an operator action and goes through the lifecycle rules.
type UpdateCandidateRequest struct {
	Name   *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Email  *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string          `json:"phone,omitempty" validate:"omitempty,max=50"`
	Status *CandidateStatus `json:"status,omitempty" validate:"omitempty,oneof=new contacted shortlisted rejected"`
}

// Validate trims the provided fields and checks their values.
func (r *UpdateCandidateRequest) Validate() error {
	if err := trimOptional(
		optionalField{"name", r.Name},
		optionalField{"email", r.Email},
		optionalField{"phone", r.Phone},
	); err != nil {
		return err
	}
	return validateStruct(r)
}

// Apply copies the provided identity fields onto c. Status is handled by the caller.
func (r *UpdateCandidateRequest) Apply(c *Candidate) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
}

// CreateResumeRequest registers an uploaded resume. The bytes live behind
// FileURL; Text optionally carries the extracted plain text.
type CreateResumeRequest struct {
	CandidateID string `json:"candidateId" validate:"required,uuid"`
	FileName    string `json:"fileName" validate:"required,max=255"`
	FileURL     string `json:"fileUrl,omitempty" validate:"max=2048"`
	Text        string `json:"text,omitempty"`
}

// Validate trims the fields and checks required values.
func (r *CreateResumeRequest) Validate() error {
	r.CandidateID = strings.TrimSpace(r.CandidateID)
	r.FileName = strings.TrimSpace(r.FileName)
	r.FileURL = strings.TrimSpace(r.FileURL)
	return validateStruct(r)
}

// SendEmailRequest asks the dispatcher to send a template to a candidate.
type SendEmailRequest struct {
	TemplateID string            `json:"templateId" validate:"required,uuid"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// Validate checks required values.
func (r *SendEmailRequest) Validate() error {
	r.TemplateID = strings.TrimSpace(r.TemplateID)
	return validateStruct(r)
}

// CreateEmailTemplateRequest is the payload for creating an email template.
type CreateEmailTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required,max=500"`
	Body    string `json:"body" validate:"required"`
}

// Validate trims the name and subject and checks required values.
func (r *CreateEmailTemplateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Subject = strings.TrimSpace(r.Subject)
	return validateStruct(r)
}

// UpdateEmailTemplateRequest carries optional template changes.
type UpdateEmailTemplateRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Subject *string `json:"subject,omitempty" validate:"omitempty,max=500"`
	Body    *string `json:"body,omitempty"`
}

// Validate trims the provided fields and checks their values.
func (r *UpdateEmailTemplateRequest) Validate() error {
	if err := trimOptional(
		optionalField{"name", r.Name},
		optionalField{"subject", r.Subject},
		optionalField{"body", r.Body},
	); err != nil {
		return err
	}
	return validateStruct(r)
}

// Apply copies the provided fields onto t.
func (r *UpdateEmailTemplateRequest) Apply(t *EmailTemplate) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Subject != nil {
		t.Subject = *r.Subject
	}
	if r.Body != nil {
		t.Body = *r.Body
	}
}
