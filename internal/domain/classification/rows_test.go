package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
	"github.com/FACorreiaa/holdings-engine/pkg/config"
)

func rankedTable(cells [][]string) extraction.RankedTable {
	return extraction.RankedTable{CandidateTable: extraction.NewCandidateTable("test", 1, cells, 80)}
}

func TestClassifyTypicalHoldingsTable(t *testing.T) {
	c := NewClassifier(config.DefaultClassifier())
	ct := c.Classify(rankedTable([][]string{
		{"ISIN", "Name", "Quantity", "Price", "Value", "Ccy"},
		{"US0378331005", "Apple Inc", "100", "176.35", "17635.00", "USD"},
		{"DE0007164600", "SAP SE", "50", "240.00", "12000.00", "EUR"},
		{"Total", "", "", "", "29635.00", ""},
	}))

	assert.True(t, ct.HeaderRows[0])
	assert.True(t, ct.FooterRows[3])
	assert.Equal(t, []int{1, 2}, ct.SecurityRows)

	assert.Equal(t, RoleIdentifier, ct.ColumnRoles[0])
	assert.Equal(t, RoleName, ct.ColumnRoles[1])
	assert.Equal(t, RoleQuantity, ct.ColumnRoles[2])
	assert.Equal(t, RolePrice, ct.ColumnRoles[3])
	assert.Equal(t, RoleValue, ct.ColumnRoles[4])
	assert.Equal(t, RoleCurrency, ct.ColumnRoles[5])
	assert.Equal(t, 0, ct.IdentifierColumn())
}

func TestClassifyHeaderlessTableByContent(t *testing.T) {
	c := NewClassifier(config.DefaultClassifier())
	ct := c.Classify(rankedTable([][]string{
		{"US0378331005", "17635.00", "USD"},
		{"DE0007164600", "12000.00", "EUR"},
		{"FR0000120271", "9000.00", "EUR"},
	}))

	assert.Equal(t, RoleIdentifier, ct.ColumnRoles[0])
	assert.Equal(t, RoleValue, ct.ColumnRoles[1])
	assert.Equal(t, RoleCurrency, ct.ColumnRoles[2])
	assert.Len(t, ct.SecurityRows, 3)
}

func TestClassifySparseRowRescuedByIdentifier(t *testing.T) {
	c := NewClassifier(config.DefaultClassifier())
	// The last row is sparse enough for the footer heuristic, but its
	// identifier checksum proves it is a security row.
	ct := c.Classify(rankedTable([][]string{
		{"ISIN", "Name", "Quantity", "Price", "Value", "Ccy"},
		{"US0378331005", "Apple Inc", "100", "176.35", "17635.00", "USD"},
		{"DE0007164600", "SAP SE", "50", "240.00", "12000.00", "EUR"},
		{"GB0002374006", "", "", "", "", ""},
	}))

	assert.False(t, ct.FooterRows[3])
	assert.Contains(t, ct.SecurityRows, 3)
}

func TestClassifyMultiRowHeader(t *testing.T) {
	c := NewClassifier(config.DefaultClassifier())
	ct := c.Classify(rankedTable([][]string{
		{"Portfolio", "Statement", "2026", "Q1", "Final", "Report"},
		{"ISIN", "Name", "Quantity", "Price", "Value", "Ccy"},
		{"US0378331005", "Apple Inc", "100", "176.35", "17635.00", "USD"},
		{"DE0007164600", "SAP SE", "50", "240.00", "12000.00", "EUR"},
	}))

	// Column roles come from the last header row, not the first.
	assert.True(t, ct.HeaderRows[0])
	assert.True(t, ct.HeaderRows[1])
	assert.Equal(t, RoleIdentifier, ct.ColumnRoles[0])
	assert.Equal(t, []int{2, 3}, ct.SecurityRows)
}

func TestClassifyFooterKeywordVariants(t *testing.T) {
	c := NewClassifier(config.DefaultClassifier())
	for _, keyword := range []string{"Total", "Subtotal", "Grand Total", "Gesamt", "Portfolio Value"} {
		ct := c.Classify(rankedTable([][]string{
			{"ISIN", "Name", "Value"},
			{"US0378331005", "Apple Inc", "17635.00"},
			{"DE0007164600", "SAP SE", "12000.00"},
			{keyword, "", "29635.00"},
		}))
		assert.True(t, ct.FooterRows[3], "keyword %q", keyword)
	}
}

func TestClassifyEmptyTable(t *testing.T) {
	c := NewClassifier(config.DefaultClassifier())
	ct := c.Classify(rankedTable(nil))
	assert.Empty(t, ct.SecurityRows)
	assert.Empty(t, ct.ColumnRoles)
}

func TestIdentifierColumnAbsent(t *testing.T) {
	c := NewClassifier(config.DefaultClassifier())
	ct := c.Classify(rankedTable([][]string{
		{"Name", "Value"},
		{"Apple Inc", "17635.00"},
		{"SAP SE", "12000.00"},
	}))
	require.Equal(t, -1, ct.IdentifierColumn())
	assert.Len(t, ct.SecurityRows, 2)
}
