package util_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"launchhook/internal/testutil"
	"launchhook/internal/util"
)

func TestShutdownRunsFuncsInReverseOrder(t *testing.T) {
	h := util.NewShutdownHandler(testutil.SetupTestLogger(), time.Second)
	exitCode := -1
	h.SetExitFunc(func(code int) { exitCode = code })

	var order []int
	h.RegisterShutdownFunc(func() error { order = append(order, 1); return nil })
	h.RegisterShutdownFunc(func() error { order = append(order, 2); return errors.New("ignored") })

	h.Shutdown()
	h.Shutdown()

	assert.Equal(t, []int{2, 1}, order)
	assert.Equal(t, 0, exitCode)
	select {
	case <-h.Done():
	default:
		t.Fatal("Done not closed after shutdown")
	}
}

func TestShutdownTimeout(t *testing.T) {
	h := util.NewShutdownHandler(testutil.SetupTestLogger(), 20*time.Millisecond)
	h.SetExitFunc(nil)

	block := make(chan struct{})
	defer close(block)
	h.RegisterShutdownFunc(func() error { <-block; return nil })

	start := time.Now()
	h.Shutdown()
	assert.Less(t, time.Since(start), time.Second)
}
