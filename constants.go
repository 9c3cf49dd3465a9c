package gobinder

import "github.com/ehrlich-b/gobinder/internal/constants"

// Re-exported tunables for the public API.
const (
	DefaultBinderPath        = constants.DefaultBinderPath
	DefaultBinderControlPath = constants.DefaultBinderControlPath
	DefaultBinderFsPath      = constants.DefaultBinderFsPath
	DefaultMaxThreads        = constants.DefaultMaxThreads
	DefaultMmapSize          = constants.DefaultMmapSize
	ProtocolVersion          = constants.BinderCurrentProtocolVersion
)
