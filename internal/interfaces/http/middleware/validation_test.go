package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Lion1208/fastpay/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestFormatValidationErrors(t *testing.T) {
	type depositRequest struct {
		PayerDocument string  `json:"payer_document" binding:"required,len=11"`
		Amount        float64 `json:"amount" binding:"required,gt=0"`
	}

	SetupValidator()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/deposits", func(c *gin.Context) {
		var req depositRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("returns per-field details for invalid input", func(t *testing.T) {
		body := strings.NewReader(`{"payer_document": "123", "amount": 0}`)
		req := httptest.NewRequest("POST", "/deposits", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("passes valid input through", func(t *testing.T) {
		body := strings.NewReader(`{"payer_document": "12345678901", "amount": 150.75}`)
		req := httptest.NewRequest("POST", "/deposits", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type testStruct struct {
		Required string `binding:"required"`
		Email    string `binding:"email"`
		Min      string `binding:"min=5"`
		Max      string `binding:"max=10"`
		Len      string `binding:"len=5"`
		UUID     string `binding:"uuid"`
		OneOf    string `binding:"oneof=available commission"`
		GTE      int    `binding:"gte=10"`
		LTE      int    `binding:"lte=100"`
		GT       int    `binding:"gt=0"`
		LT       int    `binding:"lt=1000"`
		URL      string `binding:"url"`
		Numeric  string `binding:"numeric"`
	}

	v := validator.New()

	tests := []struct {
		field    string
		expected string
	}{
		{"Required", "This field is required"},
		{"Email", "Invalid email format"},
		{"Min", "Must be at least 5 characters"},
		{"Max", "Must be at most"},
		{"Len", "Must be exactly 5 characters"},
		{"UUID", "Invalid UUID format"},
		{"OneOf", "Must be one of: available commission"},
		{"URL", "Invalid URL format"},
	}

	err := v.Struct(testStruct{})
	require.Error(t, err)
	validationErrs := err.(validator.ValidationErrors)

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			for _, e := range validationErrs {
				if e.Field() == tt.field {
					assert.Contains(t, getValidationMessage(e), tt.expected)
					return
				}
			}
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("handles validator.ValidationErrors", func(t *testing.T) {
		type input struct {
			Code string `json:"code" binding:"required"`
		}

		router := gin.New()
		router.POST("/register", func(c *gin.Context) {
			var in input
			if err := c.ShouldBindJSON(&in); err != nil {
				HandleValidationError(c, err)
				return
			}
		})

		body := strings.NewReader(`{}`)
		req := httptest.NewRequest("POST", "/register", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
	})
}
