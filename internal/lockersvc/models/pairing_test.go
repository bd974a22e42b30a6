package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAppName(t *testing.T) {
	assert.Equal(t, "notepad", NormalizeAppName("  Notepad "))
	assert.Equal(t, "notepad", NormalizeAppName("NOTEPAD.exe"))
	assert.Equal(t, "", NormalizeAppName("   "))
}
