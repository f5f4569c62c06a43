package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	a := assert.New(t)

	t1, err := Generate(20)
	a.NoError(err)
	a.Equal(20, len(t1))

	t2, err := Generate(20)
	a.NoError(err)
	a.NotEqual(t1, t2)

	short, err := Generate(8)
	a.NoError(err)
	a.Equal(8, len(short))
}
