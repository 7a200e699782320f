package prompt

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndices(t *testing.T) {
	options := []string{"AI/ML", "Web Dev", "App Dev"}

	assert.Equal(t, 1, indexOf(options, "Web Dev"))
	assert.Equal(t, -1, indexOf(options, "Robotics"))
	assert.Equal(t, []int{0, 2}, indicesOf(options, []string{"App Dev", "AI/ML"}))
	assert.Equal(t, []string{"App Dev", "AI/ML"}, valuesAt(options, []int{2, 9, 0}))
}

func TestInfoWritesLine(t *testing.T) {
	var buf bytes.Buffer
	d := Survey(&buf)

	assert.NoError(t, d.Info(context.Background(), "Application submitted"))
	assert.Equal(t, "Application submitted\n", buf.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Info(ctx, "late"), context.Canceled)
}
