package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mommylounge/lounge-server/internal/http/response"
)

// EnvelopeVersion is the response envelope version sent as "v".
const EnvelopeVersion = response.EnvelopeVersion

// APIEnvelope wraps success and plain error responses.
type APIEnvelope = response.Envelope //nolint:revive // API prefix is intentional for clarity

// APIErrorEnvelope wraps errors that carry a code and details.
type APIErrorEnvelope = response.ErrorEnvelope //nolint:revive // API prefix is intentional for clarity

// EnvelopeTransformer wraps every huma response body in the versioned envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}

	if code < 400 {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: true,
			Data:    v,
		}, nil
	}

	switch e := v.(type) {
	case *APIError:
		if e.Code == "" {
			return APIEnvelope{Version: EnvelopeVersion, Success: false, Error: e.Message}, nil
		}
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   e.Message,
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		}, nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Success: false, Error: e.Error()}, nil
	default:
		return APIEnvelope{Version: EnvelopeVersion, Success: false, Data: v}, nil
	}
}
