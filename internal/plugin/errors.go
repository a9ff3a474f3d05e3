// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package plugin

// Error codes attached to oops errors returned by this package.
const (
	CodeHostMissing            = "HOST_MISSING"
	CodeExtensionPathMissing   = "EXTENSION_PATH_MISSING"
	CodeStateMissing           = "STATE_MISSING"
	CodeEventsMissing          = "EVENTS_MISSING"
	CodeExtensionInvalid       = "EXTENSION_INVALID"
	CodeExtensionNotRegistered = "EXTENSION_NOT_REGISTERED"
	CodeExtensionEmpty         = "EXTENSION_EMPTY"
	CodeExtensionNotCallable   = "EXTENSION_NOT_CALLABLE"
	CodeExtensionFailed        = "EXTENSION_FAILED"
	CodeExcludeInvalid         = "EXCLUDE_INVALID"
	CodeDescriptorWrite        = "DESCRIPTOR_WRITE_FAILED"
	CodeDescriptorInvalid      = "DESCRIPTOR_INVALID"
	CodeAssetCopy              = "ASSET_COPY_FAILED"
)
