// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibsearch/internal/normalize"
	"github.com/pdiddy/bibsearch/pkg/types"
)

func TestSynthesizeArxivEndToEnd(t *testing.T) {
	r := types.NewRecord(types.SourceArxiv, "Diffusion Models Beat GANs", []string{"Tong, Alex"}, "2024", "2401.00001", "")

	c, err := Synthesize(r)
	require.NoError(t, err)

	assert.Equal(t, "tong2024diffusion", c.Key)
	assert.Equal(t, `@article{tong2024diffusion,
  title = {Diffusion Models Beat GANs},
  author = {Tong, Alex},
  year = {2024},
  journal = {arXiv preprint},
  eprint = {2401.00001},
  archivePrefix = {arXiv},
}
`, c.Entry)
	assert.Contains(t, c.Entry, "eprint = {2401.00001}")
	assert.NotContains(t, c.Entry, "doi")
}

func TestSynthesizeIsIdempotent(t *testing.T) {
	r := types.NewRecord(types.SourceDBLP, "The Attention Is All You Need", []string{"Jianxin Wang", "Alex Tong"}, "2017", "10.1145/3.4", "NeurIPS")
	a, err := Synthesize(r)
	require.NoError(t, err)
	b, err := Synthesize(r)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "wang2017attention", a.Key)
}

func TestKeyAuthorForms(t *testing.T) {
	inverted := types.NewRecord(types.SourceCrossref, "Graphs", []string{"Wang, Jianxin"}, "2020", "", "")
	direct := types.NewRecord(types.SourceCrossref, "Graphs", []string{"Jianxin Wang"}, "2020", "", "")
	assert.Equal(t, "wang2020graphs", Key(inverted))
	assert.Equal(t, Key(inverted), Key(direct))
}

func TestKeyEmptyAuthors(t *testing.T) {
	r := types.NewRecord(types.SourceCrossref, "A Study", nil, "2021", "10.1/x", "")
	assert.Equal(t, normalize.CleanForKey("anon")+"2021study", Key(r))
}

func TestKeyUnknownYearAndFallbackWord(t *testing.T) {
	r := types.NewRecord(types.SourceDBLP, "The", []string{"Ada Lovelace"}, "", "https://dblp.org/rec/x", "")
	assert.Equal(t, "lovelace????paper", Key(r))
}

func TestSynthesizeCrossref(t *testing.T) {
	withVenue := types.NewRecord(types.SourceCrossref, "Graph Networks", []string{"Wang, Jianxin", "Tong, Alex"}, "2019", "10.1145/3292500", "KDD")
	c, err := Synthesize(withVenue)
	require.NoError(t, err)
	assert.Contains(t, c.Entry, "author = {Wang, Jianxin and Tong, Alex}")
	assert.Contains(t, c.Entry, "journal = {KDD}")
	assert.Contains(t, c.Entry, "doi = {10.1145/3292500}")
	assert.NotContains(t, c.Entry, "eprint")

	noVenue := types.NewRecord(types.SourceCrossref, "Graph Networks", nil, "2019", "10.1145/3292500", "")
	c, err = Synthesize(noVenue)
	require.NoError(t, err)
	assert.Contains(t, c.Entry, "journal = {Unknown}")
}

func TestSynthesizeDBLPIdentifierBranch(t *testing.T) {
	doi := types.NewRecord(types.SourceDBLP, "Learning", []string{"Alex Tong"}, "2023", "10.1145/3.4", "")
	c, err := Synthesize(doi)
	require.NoError(t, err)
	assert.Contains(t, c.Entry, "doi = {10.1145/3.4}")
	assert.NotContains(t, c.Entry, "url = ")
	assert.Contains(t, c.Entry, "journal = {Unknown}")

	link := types.NewRecord(types.SourceDBLP, "Learning", []string{"Alex Tong"}, "2023", "https://dblp.org/rec/x", "NeurIPS")
	c, err = Synthesize(link)
	require.NoError(t, err)
	assert.Contains(t, c.Entry, "url = {https://dblp.org/rec/x}")
	assert.NotContains(t, c.Entry, "doi = ")
	assert.Contains(t, c.Entry, "journal = {NeurIPS}")
}

func TestSynthesizeOmitsEmptyIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		source types.Source
	}{
		{name: "crossref without DOI", source: types.SourceCrossref},
		{name: "dblp without link", source: types.SourceDBLP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := types.NewRecord(tt.source, "Graph Networks", []string{"Wang, Jianxin"}, "2019", "", "KDD")
			c, err := Synthesize(r)
			require.NoError(t, err)
			assert.NotContains(t, c.Entry, "doi = ")
			assert.NotContains(t, c.Entry, "url = ")
			assert.Equal(t, "@article{wang2019graph,\n"+
				"  title = {Graph Networks},\n"+
				"  author = {Wang, Jianxin},\n"+
				"  year = {2019},\n"+
				"  journal = {KDD},\n"+
				"}\n", c.Entry)
		})
	}
}

func TestSynthesizeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		r     types.Record
		field string
	}{
		{"missing title", types.Record{Source: types.SourceArxiv, Year: "2024"}, "title"},
		{"missing year", types.Record{Source: types.SourceArxiv, Title: "T"}, "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Synthesize(tt.r)
			var me *MalformedRecordError
			require.True(t, errors.As(err, &me), "error = %v", err)
			assert.Equal(t, tt.field, me.Field)
		})
	}
}

func TestRenderWithOverriddenKey(t *testing.T) {
	r := types.NewRecord(types.SourceArxiv, "Diffusion Models Beat GANs", []string{"Tong, Alex"}, "2024", "2401.00001", "")
	entry, err := Render(r, "tong2024diffusionb")
	require.NoError(t, err)
	assert.Contains(t, entry, "@article{tong2024diffusionb,")
}

func TestIsDOI(t *testing.T) {
	assert.True(t, IsDOI("10.1145/3.4"))
	assert.False(t, IsDOI("https://doi.org/10.1145/3.4"))
	assert.False(t, IsDOI(""))
}
