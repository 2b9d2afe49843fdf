package pairing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = "2@AbCdEf0123==,kq9Zr1XK0Yc=,Vb7n2Q1fW8Y=,ZmFrZS1wYWlyaW5n"

func TestRender_Deterministic(t *testing.T) {
	first, err := Render("ABC123")
	require.NoError(t, err)
	second, err := Render("ABC123")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, strings.TrimSpace(first))
}

func TestRender_MultiLineBlock(t *testing.T) {
	block, err := Render(samplePayload)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	assert.Greater(t, len(lines), 10)
	assert.True(t, strings.ContainsAny(block, "▀▄█"), "compact mode uses half blocks")
}

func TestRender_DifferentPayloadsDiffer(t *testing.T) {
	a, err := Render("ABC123")
	require.NoError(t, err)
	b, err := Render("ABC124")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRenderWith_FullModeIsTaller(t *testing.T) {
	compact, err := RenderWith(samplePayload, ModeCompact)
	require.NoError(t, err)
	full, err := RenderWith(samplePayload, ModeFull)
	require.NoError(t, err)

	assert.Greater(t, strings.Count(full, "\n"), strings.Count(compact, "\n"))
	assert.Contains(t, full, "\033[40m")
}

func TestRender_RejectsEmpty(t *testing.T) {
	for _, payload := range []string{"", "   ", "\n"} {
		_, err := Render(payload)
		assert.ErrorIs(t, err, ErrEmptyPayload, "payload %q", payload)
	}
}

func TestRender_RejectsOversized(t *testing.T) {
	_, err := Render(strings.Repeat("x", 8000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode pairing payload")
}
