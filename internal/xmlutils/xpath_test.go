package xmlutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/xmlpath.v2"
)

const doc = `<Document><Stmt><Ntry><Amt Ccy="EUR"> 12.50 </Amt><Info></Info></Ntry><Ntry><Amt>3</Amt></Ntry></Stmt></Document>`

func TestParse(t *testing.T) {
	root, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.True(t, Exists(root, xmlpath.MustCompile("//Stmt")))
	assert.False(t, Exists(root, xmlpath.MustCompile("//BkToCstmrStmt")))

	_, err = Parse([]byte("<Document><Unclosed>"))
	assert.Error(t, err)
}

func TestFirstAndNodes(t *testing.T) {
	root, err := Parse([]byte(doc))
	require.NoError(t, err)

	entries := Nodes(root, xmlpath.MustCompile("//Ntry"))
	require.Len(t, entries, 2)

	amt := xmlpath.MustCompile("Amt")
	info := xmlpath.MustCompile("Info")
	ccy := xmlpath.MustCompile("Amt/@Ccy")

	assert.Equal(t, "12.50", First(entries[0], amt))
	assert.Equal(t, "EUR", First(entries[0], ccy))
	assert.Equal(t, "12.50", First(entries[0], info, amt))
	assert.Equal(t, "", First(entries[1], info, ccy))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Coffee \n\t Shop  ", "Coffee Shop"},
		{"Remittance Info: Rent December", "Rent December"},
		{"Transfer from CH9300762011623852957 ok", "Transfer from IBAN ok"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in))
	}
}
