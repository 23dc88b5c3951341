package pipeline

import "github.com/sells-group/catalog-enrich/internal/model"

// sourceKinds maps the research service's source_kind vocabulary onto the
// internal trust taxonomy. Kinds outside this table are dropped rather
// than guessed at.
var sourceKinds = map[string]model.SourceType{
	"official": model.SourceOfficialManufacturer,
	"curated":  model.SourceCuratedRetailer,
	"generic":  model.SourceGenericWeb,
	"manual":   model.SourceManualOverride,
}

func sourceTypeFor(kind string) (model.SourceType, bool) {
	st, ok := sourceKinds[kind]
	return st, ok
}
