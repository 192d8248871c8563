package casefile

import (
	"embed"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
)

//go:embed samples/*.json
var samplesFS embed.FS

// Samples returns the built-in cases sorted by file name. Unlike imports, samples keep their fixed ids so that seeding
// them twice is harmless.
func Samples() ([]models.Case, error) {
	names, err := fs.Glob(samplesFS, "samples/*.json")
	if err != nil {
		return nil, errors.Wrap(err, "glob samples")
	}
	sort.Strings(names)
	cases := make([]models.Case, 0, len(names))
	for _, name := range names {
		data, err := samplesFS.ReadFile(name)
		if err != nil {
			return nil, errors.Wrap(err, "read sample", slog.String("file", name))
		}
		c, err := ParseJSON(data)
		if err != nil {
			return nil, errors.Wrap(err, "parse sample", slog.String("file", name))
		}
		if err = Validate(c); err != nil {
			return nil, errors.Wrap(err, "validate sample", slog.String("file", name))
		}
		applyDefaults(c)
		cases = append(cases, *c)
	}
	return cases, nil
}
