// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{in: "arxiv", want: SourceArxiv},
		{in: " Crossref ", want: SourceCrossref},
		{in: "DBLP", want: SourceDBLP},
		{in: "scholar", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRecord(t *testing.T) {
	r := NewRecord(SourceArxiv, "  Attention\n  Is   All\tYou Need ", []string{"Vaswani, Ashish", " ", ""}, "", " 1706.03762 ", " ")

	assert.Equal(t, "Attention Is All You Need", r.Title)
	assert.Equal(t, []string{"Vaswani, Ashish"}, r.Authors)
	assert.Equal(t, UnknownYear, r.Year)
	assert.Equal(t, "1706.03762", r.Identifier)
	assert.Empty(t, r.Venue)
}

func TestNewRecordNilAuthors(t *testing.T) {
	r := NewRecord(SourceDBLP, "T", nil, "2020", "", "")
	assert.NotNil(t, r.Authors)
	assert.Empty(t, r.Authors)
}
