// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/bibsearch/pkg/types"
)

func TestToCSLItemArxiv(t *testing.T) {
	r := types.NewRecord(types.SourceArxiv, "Attention Is All You Need", []string{"Ashish Vaswani"}, "2017", "1706.03762", "")

	item := toCSLItem(r)

	if item.Type != "article" {
		t.Errorf("Type = %q, want %q", item.Type, "article")
	}
	if item.Number != "1706.03762" {
		t.Errorf("Number = %q", item.Number)
	}
	if item.ContainerTitle != "arXiv" {
		t.Errorf("ContainerTitle = %q", item.ContainerTitle)
	}
	if item.DOI != "" {
		t.Errorf("DOI should be empty for arXiv, got %q", item.DOI)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2017 {
		t.Errorf("Issued year should be 2017")
	}
}

func TestToCSLItemDOIAndURL(t *testing.T) {
	doi := toCSLItem(types.NewRecord(types.SourceDBLP, "T", nil, "2023", "10.1145/3.4", "KDD"))
	if doi.DOI != "10.1145/3.4" || doi.URL != "" {
		t.Errorf("DOI item = %+v", doi)
	}
	if doi.ContainerTitle != "KDD" {
		t.Errorf("ContainerTitle = %q", doi.ContainerTitle)
	}

	link := toCSLItem(types.NewRecord(types.SourceDBLP, "T", nil, types.UnknownYear, "https://dblp.org/rec/x", ""))
	if link.URL != "https://dblp.org/rec/x" || link.DOI != "" {
		t.Errorf("URL item = %+v", link)
	}
	if link.Issued != nil {
		t.Errorf("unknown year should have no issued date, got %+v", link.Issued)
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		input string
		want  CSLName
	}{
		{"Wang, Jianxin", CSLName{Family: "Wang", Given: "Jianxin"}},
		{"Alex Tong", CSLName{Family: "Tong", Given: "Alex"}},
		{"OpenAI", CSLName{Literal: "OpenAI"}},
		{"", CSLName{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseAuthorName(tt.input); got != tt.want {
				t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCSL(t *testing.T) {
	records := []types.Record{
		types.NewRecord(types.SourceCrossref, "Graph Networks", []string{"Wang, Jianxin"}, "2019", "10.1/x", "KDD"),
	}
	var buf bytes.Buffer
	if err := FormatCSL(records, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id: 10.1/x", "family: Wang", "DOI: 10.1/x", "container-title: KDD"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
