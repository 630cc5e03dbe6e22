package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/azura/internal/common"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

const internalMessage = "internal server error"

// StatusFor maps an error to its HTTP status by kind.
func StatusFor(err error) int {
	switch common.Kind(err) {
	case "":
		return http.StatusOK
	case "MissingToken", "InvalidToken", "ExpiredToken":
		return http.StatusUnauthorized
	case "InvalidCredentials", "InvalidResetHash", "ExpiredResetHash", "Validation":
		return http.StatusBadRequest
	case "EmailTaken":
		return http.StatusConflict
	case "NotFound":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorBody hides the message of internal errors.
func errorBody(err error) ErrorBody {
	kind := common.Kind(err)
	if kind == "Internal" {
		return ErrorBody{Error: internalMessage, Code: kind}
	}
	return ErrorBody{Error: err.Error(), Code: kind}
}
