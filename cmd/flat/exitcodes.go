package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no repository, invalid config)
	ExitDataError   = 3 // Data error (validation failure, invalid line)
	ExitNotFound    = 4 // Entity or store not found
	ExitIOError     = 5 // Reading or writing a data file failed
)
