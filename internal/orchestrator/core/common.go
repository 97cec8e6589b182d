package core

// MaxConcurrentCalls bounds the downstream calls a single flow issues in parallel.
const MaxConcurrentCalls = 4
