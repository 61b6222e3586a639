// errors/rule_errors.go
package errors

import "errors"

var (
	ErrInvalidRules      = errors.New("invalid masking rule set")
	ErrCountyNotFound    = errors.New("county not found")
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrRuleStoreConflict = errors.New("concurrent rule update in progress")
)
