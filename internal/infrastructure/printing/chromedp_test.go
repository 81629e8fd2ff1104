package printing

import (
	"context"
	"testing"
	"time"

	"github.com/reqtrace/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrintParams_Landscape(t *testing.T) {
	params := buildPrintParams(&RenderRequest{HTML: "<p>x</p>", Landscape: true})

	assert.InDelta(t, mmToInches(210), params.PaperWidth, 0.001)
	assert.InDelta(t, mmToInches(297), params.PaperHeight, 0.001)
	assert.True(t, params.Landscape)
	assert.True(t, params.PrintBackground)
	assert.InDelta(t, mmToInches(DefaultMargins().Top), params.MarginTop, 0.001)
	assert.False(t, params.DisplayHeaderFooter)
}

func TestBuildPrintParams_FooterReservesMargin(t *testing.T) {
	params := buildPrintParams(&RenderRequest{
		HTML:       "<p>x</p>",
		Margins:    Margins{Top: 5, Right: 5, Bottom: 2, Left: 5},
		FooterHTML: matrixFooter,
	})

	assert.True(t, params.DisplayHeaderFooter)
	assert.Equal(t, matrixFooter, params.FooterTemplate)
	assert.InDelta(t, mmToInches(10), params.MarginBottom, 0.001)
	assert.InDelta(t, mmToInches(5), params.MarginTop, 0.001)
}

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(config.PrintingConfig{Enabled: true}, nil)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.timeout)
	assert.False(t, r.remote)

	remote := NewChromedpRenderer(config.PrintingConfig{RemoteURL: "ws://chrome:9222", Timeout: time.Second}, nil)
	defer remote.Close()
	assert.True(t, remote.remote)
	assert.Equal(t, time.Second, remote.timeout)
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r := NewChromedpRenderer(config.PrintingConfig{}, nil)
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "   "})
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.7")))
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Non Functional", humanize("NON_FUNCTIONAL"))
	assert.Equal(t, "In Progress", humanize("IN_PROGRESS"))
	assert.Equal(t, "", humanize(""))
}
