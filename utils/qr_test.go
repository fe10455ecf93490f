package utils

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCode(t *testing.T) {
	data, err := GenerateQRCode("eyJjb2RlIjoiQUIifQ.0123456789abcdef", 200)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	data, err = GenerateQRCode("eyJjb2RlIjoiQUIifQ.0123456789abcdef", 0)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, TicketQRSize, img.Bounds().Dx())

	_, err = GenerateQRCode("", 200)
	assert.ErrorIs(t, err, ErrEmptyQRContent)
}
