package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckFlags(t *testing.T) {
	assert.NoError(t, checkFlags(30, 1200, 800, time.Second))

	cases := []struct {
		name       string
		rate, w, h int
		every      time.Duration
	}{
		{"zero rate", 0, 1200, 800, time.Second},
		{"negative rate", -5, 1200, 800, time.Second},
		{"huge rate", 1 << 40, 1200, 800, time.Second},
		{"zero width", 30, 0, 800, time.Second},
		{"zero snapshot interval", 30, 1200, 800, 0},
	}
	for _, c := range cases {
		assert.Error(t, checkFlags(c.rate, c.w, c.h, c.every), c.name)
	}
}
