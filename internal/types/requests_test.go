package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateJobRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateJobRequest
		wantField string
	}{
		{
			name: "valid",
			req: CreateJobRequest{
				Title: "Frontend Developer", Company: "TechCorp",
				Location: "Remote", Description: "React and 3+ years",
			},
		},
		{
			name:      "missing title",
			req:       CreateJobRequest{Company: "TechCorp", Location: "Remote", Description: "x"},
			wantField: "title",
		},
		{
			name: "blank description",
			req: CreateJobRequest{
				Title: "Dev", Company: "TechCorp", Location: "Remote", Description: "   \n\t",
			},
			wantField: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestCreateJobRequest_TrimsFields(t *testing.T) {
	req := CreateJobRequest{Title: "  Dev ", Company: " Co ", Location: " NYC ", Description: " text "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Dev", req.Title)
	assert.Equal(t, "Co", req.Company)
	assert.Equal(t, "NYC", req.Location)
	assert.Equal(t, "text", req.Description)
}

func TestCreateCandidateRequest_Validate(t *testing.T) {
	valid := CreateCandidateRequest{Name: "John Smith", Email: "john.smith@example.com", Phone: "(555) 123-4567"}
	assert.NoError(t, valid.Validate())

	badEmail := CreateCandidateRequest{Name: "John", Email: "not-an-email", Phone: "1"}
	err := badEmail.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Contains(t, verr.Message, "email")

	noPhone := CreateCandidateRequest{Name: "John", Email: "john@example.com"}
	require.ErrorAs(t, noPhone.Validate(), &verr)
	assert.Equal(t, "phone", verr.Field)
}

func TestUpdateCandidateRequest_Status(t *testing.T) {
	status := CandidateStatus("hired")
	req := UpdateCandidateRequest{Status: &status}
	err := req.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	ok := CandidateRejected
	req = UpdateCandidateRequest{Status: &ok}
	assert.NoError(t, req.Validate())
}

func TestUpdateCandidateRequest_BlankNameRejected(t *testing.T) {
	req := UpdateCandidateRequest{Name: strPtr("   ")}
	err := req.Validate()
	assert.True(t, IsValidation(err))
}

func TestCreateResumeRequest_Validate(t *testing.T) {
	req := CreateResumeRequest{CandidateID: "not-a-uuid", FileName: "cv.pdf"}
	err := req.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "candidateId", verr.Field)

	req = CreateResumeRequest{CandidateID: "5f0c8a2e-3b7e-4a0b-9d5e-2f6c1f0b8a11", FileName: "cv.pdf"}
	assert.NoError(t, req.Validate())
}

func TestUpdateJobRequest_Apply(t *testing.T) {
	job := &JobDescription{Title: "Old", Company: "Co", Location: "NYC"}
	req := UpdateJobRequest{Title: strPtr(" New ")}
	require.NoError(t, req.Validate())
	req.Apply(job)
	assert.Equal(t, "New", job.Title)
	assert.Equal(t, "Co", job.Company)
}

func TestUpdateRequests_ReportFirstBlankFieldInOrder(t *testing.T) {
	for i := 0; i < 20; i++ {
		job := UpdateJobRequest{Title: strPtr(" "), Company: strPtr(" "), Location: strPtr(" ")}
		var verr *ValidationError
		require.ErrorAs(t, job.Validate(), &verr)
		assert.Equal(t, "title", verr.Field)

		candidate := UpdateCandidateRequest{Name: strPtr(""), Email: strPtr(""), Phone: strPtr("")}
		require.ErrorAs(t, candidate.Validate(), &verr)
		assert.Equal(t, "name", verr.Field)

		tmpl := UpdateEmailTemplateRequest{Subject: strPtr(" "), Body: strPtr(" ")}
		require.ErrorAs(t, tmpl.Validate(), &verr)
		assert.Equal(t, "subject", verr.Field)
	}
}
