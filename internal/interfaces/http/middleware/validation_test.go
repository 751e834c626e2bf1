package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/treasury/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

type amountRequest struct {
	AccountID string           `json:"account_id" binding:"required,uuid"`
	Amount    decimal.Decimal  `json:"amount" binding:"decimal_gt0,decimal_money"`
	Opening   *decimal.Decimal `json:"opening" binding:"omitempty,decimal_gte0,decimal_money"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req amountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"amount": req.Amount.String()})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDecimalValidation(t *testing.T) {
	router := validationRouter()
	accountID := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	tests := []struct {
		name   string
		body   string
		status int
		fields []string
	}{
		{"string amount", `{"account_id":"` + accountID + `","amount":"10.50"}`, http.StatusOK, nil},
		{"number amount", `{"account_id":"` + accountID + `","amount":0.01,"opening":"0"}`, http.StatusOK, nil},
		{"zero amount", `{"account_id":"` + accountID + `","amount":"0"}`, http.StatusBadRequest, []string{"amount"}},
		{"negative amount", `{"account_id":"` + accountID + `","amount":"-5"}`, http.StatusBadRequest, []string{"amount"}},
		{"negative opening", `{"account_id":"` + accountID + `","amount":"1","opening":"-1"}`, http.StatusBadRequest, []string{"opening"}},
		{"trailing zeros fit the currency", `{"account_id":"` + accountID + `","amount":"1.500"}`, http.StatusOK, nil},
		{"sub-cent amount", `{"account_id":"` + accountID + `","amount":"0.004"}`, http.StatusBadRequest, []string{"amount"}},
		{"sub-cent number", `{"account_id":"` + accountID + `","amount":12.345}`, http.StatusBadRequest, []string{"amount"}},
		{"sub-cent opening", `{"account_id":"` + accountID + `","amount":"1","opening":"10.001"}`, http.StatusBadRequest, []string{"opening"}},
		{"bad uuid and missing amount", `{"account_id":"nope"}`, http.StatusBadRequest, []string{"account_id", "amount"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.fields == nil {
				return
			}

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			var fields []string
			for _, d := range resp.Error.Details {
				fields = append(fields, d.Field)
			}
			assert.ElementsMatch(t, tt.fields, fields)
		})
	}
}

func TestHandleValidationError_MalformedBody(t *testing.T) {
	router := validationRouter()

	w := postJSON(router, `{"amount": "ten"`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
