package postgres

import (
	"errors"

	"github.com/lib/pq"

	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
)

// Error codes the hosted store returns when an ordered read needs an index
// that was never provisioned.
var missingIndexCodes = map[string]bool{
	"42704": true, // undefined_object
	"42P10": true, // invalid_column_reference
	"42883": true, // undefined_function
}

// classifyOrdered translates a store rejection of an ordered read into the
// missing-index error the service-level fallback keys on. Other errors pass
// through untouched.
func classifyOrdered(collection string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && missingIndexCodes[string(pqErr.Code)] {
		return apperrors.NewMissingIndex(collection, err)
	}
	return err
}
