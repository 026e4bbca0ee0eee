package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRegistryLoad is returned when a brand, category or pattern registry cannot be read
	ErrRegistryLoad = errors.New("registry load failed")

	// ErrUnknownFormat is returned for input formats the readers do not understand
	ErrUnknownFormat = errors.New("unknown input format")

	// ErrUnknownMode is returned for ingestion modes other than dry-run, commit and report-only
	ErrUnknownMode = errors.New("unknown ingestion mode")

	// ErrCatalogUnavailable is returned when the comparison catalog cannot be fetched
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrBatchNotFound is returned when a batch report is not (or no longer) cached
	ErrBatchNotFound = errors.New("batch not found")

	// ErrStoreUnavailable is returned when the part store cannot be reached
	ErrStoreUnavailable = errors.New("part store unavailable")

	// ErrCommitDisabled is returned when commit mode is requested without a part store
	ErrCommitDisabled = errors.New("commit mode requires a configured part store")
)
