package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	node, err := html.Parse(strings.NewReader(
		`<td class="player"><a href="/player/1">Patrick <b>Mahomes</b></a></td>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Patrick Mahomes", GetText(node))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "Dead Cap", CleanText("  Dead \n\t Cap "))
	require.Equal(t, "QB", CleanText("\nQB\n"))
	require.Equal(t, "", CleanText("   "))
}
