//go:build tools

// Package tools pins the code generators run by go generate (mockgen).
package chat_relay

import (
	_ "go.uber.org/mock/mockgen"
)
