package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	p := Ptr("excel-101")
	assert.Equal(t, "excel-101", *p)
	assert.NotSame(t, p, Ptr("excel-101"))
}
