package dblink

import (
	"fmt"
	"regexp"
)

// Filterer reports whether a chunk name should be kept.
type Filterer func(string) bool

// NewFilterer compiles include and exclude patterns into a Filterer.
// A name passes if it matches no exclude and, when includes are given, at least one include.
func NewFilterer(includes, excludes []string) (Filterer, error) {
	reIncludes, err := compileAll(includes)
	if err != nil {
		return nil, fmt.Errorf("compiling include: %w", err)
	}

	reExcludes, err := compileAll(excludes)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude: %w", err)
	}

	if len(reIncludes) == 0 && len(reExcludes) == 0 {
		return func(string) bool { return true }, nil
	}

	return func(name string) bool {
		for _, re := range reExcludes {
			if re.MatchString(name) {
				return false
			}
		}

		if len(reIncludes) == 0 {
			return true
		}

		for _, re := range reIncludes {
			if re.MatchString(name) {
				return true
			}
		}

		return false
	}, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", pattern, err)
		}
		res = append(res, re)
	}
	return res, nil
}
