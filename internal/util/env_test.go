package util

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenv(t *testing.T) {
	a := assert.New(t)
	a.NoError(os.Setenv("RR_TEST_KEY", ""))
	a.Equal("fallback", Getenv("RR_TEST_KEY", "fallback"))

	a.NoError(os.Setenv("RR_TEST_KEY", "value"))
	a.Equal("value", Getenv("RR_TEST_KEY", "fallback"))
}
