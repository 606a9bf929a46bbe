package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"kitty-services/kittylog"
	"kitty-services/types"

	"github.com/ninja-software/terror/v2"
)

type ErrorMessage string

const (
	InternalErrorTryAgain ErrorMessage = "Internal Error - Please try again in a few minutes or Contact Support"
	InputError            ErrorMessage = "Input Error - Please try again"
)

func (errMsg ErrorMessage) String() string {
	return string(errMsg)
}

// ErrorObject is the JSON body of every failed request.
type ErrorObject struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// WithError handles error responses.
func WithError(next func(w http.ResponseWriter, r *http.Request) (int, error)) http.HandlerFunc {
	fn := func(w http.ResponseWriter, r *http.Request) {
		code, err := next(w, r)
		if err == nil {
			return
		}

		errObj := &ErrorObject{
			Message:   err.Error(),
			ErrorCode: fmt.Sprintf("%d", code),
		}
		var tErr *terror.TError
		if errors.As(err, &tErr) {
			errObj.Message = tErr.Message

			switch tErr.Level {
			case terror.ErrLevelWarn:
				kittylog.L.Warn().Err(err).Msg("rest error")
			default:
				kittylog.L.Err(err).Msg("rest error")
			}

			if tErr.Error() == tErr.Message {
				if code == http.StatusInternalServerError {
					errObj.Message = InternalErrorTryAgain.String()
				}
				if code == http.StatusBadRequest {
					errObj.Message = InputError.String()
				}
			}
		} else {
			kittylog.L.Err(err).Str("r.URL.Path", r.URL.Path).Msg("rest error")
		}

		jsonErr, err := json.Marshal(errObj)
		if err != nil {
			terror.Echo(err)
			http.Error(w, `{"message":"JSON failed, please contact support.","error_code":"00001"}`, code)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(jsonErr)
	}
	return fn
}

// codeFor maps domain error kinds onto http statuses.
func codeFor(err error) int {
	switch {
	case errors.Is(err, types.ErrKittyNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrNotForSale),
		errors.Is(err, types.ErrCannotBuyOwnKitty),
		errors.Is(err, types.ErrIdenticalParents),
		errors.Is(err, types.ErrIncompatibleGenders),
		errors.Is(err, types.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInsufficientFunds),
		errors.Is(err, types.ErrAccountWouldDie):
		return http.StatusPaymentRequired
	case errors.Is(err, types.ErrIDOverflow):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) (int, error) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "could not encode response")
	}
	return http.StatusOK, nil
}

// HealthCheck responds with 200 when the service is up.
func (api *API) HealthCheck(w http.ResponseWriter, r *http.Request) (int, error) {
	return writeJSON(w, map[string]string{"status": "ok"})
}
