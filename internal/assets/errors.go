package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrScriptNotFound indicates the requested script does not exist.
	ErrScriptNotFound = errors.New("script not found")

	// ErrInvalidAssetName indicates the asset name contains path separators
	// or dots.
	ErrInvalidAssetName = errors.New("invalid asset name")
)
