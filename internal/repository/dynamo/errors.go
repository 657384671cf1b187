package dynamo

import (
	"context"
	"errors"
	"net"

	"storefront-service/internal/domain"

	"github.com/aws/smithy-go"
)

// transientCodes are DynamoDB error codes a caller may safely retry.
var transientCodes = map[string]struct{}{
	"ThrottlingException":                    {},
	"ProvisionedThroughputExceededException": {},
	"RequestLimitExceeded":                   {},
	"InternalServerError":                    {},
	"ServiceUnavailable":                     {},
	"TransactionConflictException":           {},
	"TransactionInProgressException":         {},
}

// classify turns SDK failures into domain errors. Domain errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsOrderError(err); ok {
		return err
	}
	if isTransient(err) {
		return domain.StorageUnavailable(err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		_, ok := transientCodes[apiErr.ErrorCode()]
		return ok
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
