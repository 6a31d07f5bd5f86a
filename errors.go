package gopiumlens

import "errors"

// Tool errors
var (
	// ErrToolNotFound is returned when a required binary could not be resolved to an absolute path.
	ErrToolNotFound = errors.New("tool not found")
	// ErrUnknownTool indicates the tool provider does not know the requested tool.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInstallDeclined indicates the user declined an install offer.
	ErrInstallDeclined = errors.New("tool installation declined")
	// ErrInstallFailed indicates the installer process did not succeed.
	ErrInstallFailed = errors.New("tool installation failed")
)

// Settings errors
var (
	// ErrUnknownPreset is returned by callers that want to surface an unknown preset.
	// The argument builder itself never returns it and yields an empty vector instead.
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrNoSnapshot indicates the settings store has not loaded a snapshot yet.
	ErrNoSnapshot = errors.New("settings snapshot not loaded")
)

// Outline errors
var (
	ErrNoPackageSymbol  = errors.New("no package declaration found")
	ErrNotGoFile        = errors.New("not a go source file")
	ErrConditionNotBool = errors.New("condition must evaluate to bool")
)
