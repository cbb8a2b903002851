package email

import "github.com/jonathan/talent-matcher/internal/types"

// DefaultTemplates returns the templates a fresh installation starts with.
func DefaultTemplates() []*types.EmailTemplate {
	return []*types.EmailTemplate{
		{
			Name:    "Interview Invitation",
			Subject: "Interview Invitation for {{position}} at {{company}}",
			Body: `Dear {{candidateName}},

We have reviewed your application for the {{position}} position at {{company}} and we're impressed with your qualifications. We would like to invite you for an interview on {{interviewDate}} at {{interviewTime}}.

The interview will be conducted {{interviewFormat}}.

Please confirm your availability by replying to this email.

Best regards,
{{recruiterName}}
{{company}}`,
		},
		{
			Name:    "Rejection Email",
			Subject: "Update on Your Application for {{position}} at {{company}}",
			Body: `Dear {{candidateName}},

Thank you for your interest in the {{position}} position at {{company}} and for taking the time to apply.

After careful consideration of all applications, we regret to inform you that we have decided to pursue other candidates whose qualifications more closely match our needs at this time.

We appreciate your interest in our company and wish you success in your job search.

Best regards,
{{recruiterName}}
{{company}}`,
		},
	}
}
