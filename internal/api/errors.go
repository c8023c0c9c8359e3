package api

import (
	"errors"
	"net/http"

	"github.com/aluiziotomazelli/wifi-manager/internal/manager"
)

// ToAPIError maps a manager error to an HTTP status code and a machine
// readable code/message pair.
func ToAPIError(err error) (status int, code, message string) {
	switch {
	case err == nil:
		return http.StatusOK, "", ""
	case errors.Is(err, manager.ErrInvalidState):
		return http.StatusConflict, "INVALID_STATE", "operation not valid in the current state"
	case errors.Is(err, manager.ErrTimeout):
		return http.StatusGatewayTimeout, "TIMEOUT", "operation timed out waiting for the driver"
	case errors.Is(err, manager.ErrFail):
		return http.StatusBadGateway, "FAIL", "driver reported failure"
	case errors.Is(err, manager.ErrQueueFull):
		return http.StatusServiceUnavailable, "BUSY", "command queue is full, retry with backoff"
	case errors.Is(err, manager.ErrNotInitialized):
		return http.StatusConflict, "NOT_INITIALIZED", "manager is not initialized"
	case errors.Is(err, manager.ErrAlreadyInitialized):
		return http.StatusConflict, "ALREADY_INITIALIZED", "manager is already initialized"
	default:
		return http.StatusInternalServerError, "INTERNAL", err.Error()
	}
}
