package bstable

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/domonda/go-types/charset"
	fs "github.com/ungerik/go-fs"
	"gopkg.in/yaml.v3"
)

// KnownOptionKeys are the top level widget options
// accepted by LoadOptions.
var KnownOptionKeys = []string{
	"ajax",
	"cache",
	"cardView",
	"checkboxHeader",
	"classes",
	"clickToSelect",
	"columns",
	"data",
	"dataField",
	"detailView",
	"height",
	"idField",
	"locale",
	"maintainMetaData",
	"method",
	"minWidth",
	"mobileResponsive",
	"pageList",
	"pageNumber",
	"pageSize",
	"pagination",
	"paginationNextText",
	"paginationPreText",
	"queryParamsType",
	"search",
	"searchOnEnterKey",
	"searchText",
	"selectItemName",
	"showColumns",
	"showExport",
	"showFooter",
	"showHeader",
	"showPaginationSwitch",
	"showRefresh",
	"showToggle",
	"sidePagination",
	"singleSelect",
	"smartDisplay",
	"sortName",
	"sortOrder",
	"sortable",
	"striped",
	"toolbar",
	"totalField",
	"undefinedText",
	"uniqueId",
	"url",
}

// LoadOptions reads widget options from a JSON or YAML file.
// Files with the extension ".yaml" or ".yml" are parsed as YAML,
// all other files as JSON. A UTF-8 byte order mark is ignored.
// Unknown top level keys, see KnownOptionKeys, result in an error
// suggesting the closest known key.
func LoadOptions(ctx context.Context, file fs.FileReader) (Options, error) {
	data, err := file.ReadAllContext(ctx)
	if err != nil {
		return nil, err
	}
	data = charset.TrimBOM(data, charset.BOMUTF8)

	options := make(Options)
	switch strings.ToLower(file.Ext()) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &options)
	default:
		err = json.Unmarshal(data, &options)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing table options from %s: %w", file.Name(), err)
	}
	for key := range options {
		if slices.Contains(KnownOptionKeys, key) {
			continue
		}
		if closest := ClosestStrings(3, key, KnownOptionKeys); len(closest) > 0 {
			return nil, fmt.Errorf("unknown table option %q in %s, did you mean %q?", key, file.Name(), closest[0])
		}
		return nil, fmt.Errorf("unknown table option %q in %s", key, file.Name())
	}
	return options, nil
}

// LoadOptionsFile reads options with LoadOptions
// and merges them over the current options.
func (t *Table) LoadOptionsFile(ctx context.Context, file fs.FileReader) error {
	if err := t.checkElement(); err != nil {
		return err
	}
	options, err := LoadOptions(ctx, file)
	if err != nil {
		return err
	}
	t.options.Merge(options)
	return nil
}

// ClosestStrings returns the candidates with the smallest
// Levenshtein distance to a that is below maxDistance.
func ClosestStrings(maxDistance int, a string, candidates []string) []string {
	closest := []string{}
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(a, c)
		switch {
		case dist < maxDistance:
			closest = []string{c}
			maxDistance = dist
		case dist == maxDistance && len(closest) > 0:
			closest = append(closest, c)
		}
	}
	slices.Sort(closest)
	return closest
}
