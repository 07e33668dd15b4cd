package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/stuteach-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func strPtr(s string) *string { return &s }

func TestStructCreateAssignmentCollectsEveryField(t *testing.T) {
	fields := Struct(&model.CreateAssignmentRequest{
		Title:       "   ",
		Description: "",
		Subject:     "Math",
		Deadline:    "someday",
	})

	require.Len(t, fields, 3)
	assert.Equal(t, "title is required", fields["title"])
	assert.Equal(t, "description is required", fields["description"])
	assert.Equal(t, "deadline must be a valid ISO-8601 date", fields["deadline"])
}

func TestStructCreateAssignmentValid(t *testing.T) {
	assert.Nil(t, Struct(&model.CreateAssignmentRequest{
		Title: "HW1", Description: "desc", Subject: "Math", Deadline: "2099-01-01T00:00",
	}))
}

func TestStructUpdateAssignmentPartial(t *testing.T) {
	assert.Nil(t, Struct(&model.UpdateAssignmentRequest{}))
	assert.Nil(t, Struct(&model.UpdateAssignmentRequest{Title: strPtr("HW2")}))

	status := model.AssignmentStatus("archived")
	fields := Struct(&model.UpdateAssignmentRequest{
		Subject:  strPtr("  "),
		Deadline: strPtr("not-a-date"),
		Status:   &status,
	})
	require.Len(t, fields, 3)
	assert.Contains(t, fields, "subject")
	assert.Contains(t, fields, "deadline")
	assert.Contains(t, fields, "status")
}

func TestBindRegisterRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"name":"Ada","email":"not-an-email","password":"123","role":"admin"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req model.RegisterRequest
	fields := Bind(c, &req)

	require.Len(t, fields, 3)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role")
}

func TestDecode(t *testing.T) {
	newCtx := func(body string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		return c
	}

	var req model.UpdateAssignmentRequest
	require.NoError(t, Decode(newCtx(""), &req))
	assert.Nil(t, req.Title)

	require.NoError(t, Decode(newCtx(`{"title":"HW2"}`), &req))
	require.NotNil(t, req.Title)
	assert.Equal(t, "HW2", *req.Title)

	assert.Error(t, Decode(newCtx(`{"title":`), &req))
	assert.Error(t, Decode(newCtx(`{"deadline":42}`), &req))
}
