package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/acme/svc/internal/reminder/usecase.(*Usecase).Run(0xc000)
	/src/svc/internal/reminder/usecase/run.go:88 +0x1a5
main.main()
	/src/svc/main.go:12 +0x25
`)

	// Act
	got := InternalPaths(stack)

	// Assert
	assert.Equal(t, []string{"internal/reminder/usecase/run.go:88"}, got)
}

func TestInternalPaths_Empty(t *testing.T) {
	assert.Empty(t, InternalPaths(nil))
}
