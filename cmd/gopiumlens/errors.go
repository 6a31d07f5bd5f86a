package main

import "errors"

// Sentinel errors for command operations
var (
	ErrActionFailed          = errors.New("gopium action failed")
	ErrConfigExists          = errors.New("configuration file already exists")
	ErrYesAndNoInstall       = errors.New("--yes and --no-install are mutually exclusive")
	ErrUnknownOutliner       = errors.New("unknown outliner")
	ErrMissingToolsRemaining = errors.New("some tools are still missing")
)
