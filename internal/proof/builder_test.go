package proof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theefatymah/Aurralis/internal/domain"
)

func TestExplorerURLTemplate(t *testing.T) {
	assert.Equal(t, "https://arc-explorer.com/tx/0xfeed", ExplorerURL("0xfeed"))
}

func TestBuildProofDocument(t *testing.T) {
	p := Build("0xfeed", 50, "0xrecipient")

	assert.Equal(t, "0xfeed", p.TxHash)
	assert.Equal(t, ExplorerURL("0xfeed"), p.ExplorerURL)
	assert.Equal(t, 50.0, p.Amount)
	assert.Equal(t, domain.DefaultCurrency, p.Currency)
	assert.Equal(t, domain.TransferConfirmed, p.Status)
	assert.Equal(t, 12, p.Confirmations)

	require.Len(t, p.Steps, 3)
	assert.Equal(t, []string{"validate", "transfer", "confirm"},
		[]string{p.Steps[0].ID, p.Steps[1].ID, p.Steps[2].ID})
	for _, s := range p.Steps {
		assert.Equal(t, "completed", s.Status)
	}
}
