package samples

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"bactpipe/internal/services"
)

// Sample is one specimen's paired read files, grouped under a stable key.
type Sample struct {
	Key   string
	Read1 string
	Read2 string
}

// Reads returns the ordered file list for the sample's initial work item.
func (s Sample) Reads() []string {
	return []string{s.Read1, s.Read2}
}

// Recognized paired-end naming patterns, tried in order. The first capture
// group is the sample key, the second the read role.
var pairPatterns = []*regexp.Regexp{
	// SAMPLE_S1_L001_R1_001.fastq.gz and simpler SAMPLE_R1.fastq.gz forms.
	regexp.MustCompile(`^(.+?)(?:_S\d+)?(?:_L\d{3})?_R([12])(?:_\d{3})?\.(?:fastq|fq)(?:\.gz)?$`),
	// SAMPLE_1.fastq.gz / SAMPLE_2.fq
	regexp.MustCompile(`^(.+?)_([12])\.(?:fastq|fq)(?:\.gz)?$`),
}

// Discover expands the glob pattern and groups the matched files into paired
// samples. Every matched file must be assigned to exactly one sample.
func Discover(pattern string) ([]Sample, error) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return nil, services.Wrap(services.ErrNoInput, "", "discover", "reads pattern is empty", nil)
	}

	matches, err := filepath.Glob(trimmed)
	if err != nil {
		return nil, services.Wrap(services.ErrNoInput, "", "discover", fmt.Sprintf("invalid pattern %q", trimmed), err)
	}
	if len(matches) == 0 {
		return nil, services.Wrap(services.ErrNoInput, "", "discover", fmt.Sprintf("pattern %q matched no files", trimmed), nil)
	}
	sort.Strings(matches)

	type pair struct {
		read1, read2 string
	}
	groups := make(map[string]*pair)
	order := make([]string, 0, len(matches)/2)

	for _, path := range matches {
		key, role, ok := splitPair(filepath.Base(path))
		if !ok {
			return nil, services.Wrap(services.ErrAmbiguousGrouping, "", "discover",
				fmt.Sprintf("file %q does not follow a recognized paired-end naming scheme", filepath.Base(path)), nil)
		}
		grp, seen := groups[key]
		if !seen {
			grp = &pair{}
			groups[key] = grp
			order = append(order, key)
		}
		switch role {
		case "1":
			if grp.read1 != "" {
				return nil, duplicateErr(key, path, grp.read1)
			}
			grp.read1 = path
		case "2":
			if grp.read2 != "" {
				return nil, duplicateErr(key, path, grp.read2)
			}
			grp.read2 = path
		}
	}

	result := make([]Sample, 0, len(order))
	for _, key := range order {
		grp := groups[key]
		if grp.read1 == "" || grp.read2 == "" {
			return nil, services.Wrap(services.ErrAmbiguousGrouping, "", "discover",
				fmt.Sprintf("sample %q is missing its mate read file", key), nil)
		}
		result = append(result, Sample{Key: key, Read1: grp.read1, Read2: grp.read2})
	}
	return result, nil
}

func splitPair(name string) (key, role string, ok bool) {
	for _, re := range pairPatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

func duplicateErr(key, path, existing string) error {
	return services.Wrap(services.ErrAmbiguousGrouping, "", "discover",
		fmt.Sprintf("sample %q has conflicting read files %q and %q", key, filepath.Base(existing), filepath.Base(path)), nil)
}
