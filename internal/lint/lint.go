// Package lint best-effort verifies a batch of reconstructed .proto
// sources by feeding them back through a real protobuf compiler, using
// bufbuild/protocompile the same way an authoritative parser would.
// Verification is advisory: a syntax error here means the structural
// writer produced something a real protoc-equivalent parser rejects,
// which is useful forensic signal but never blocks the extraction
// itself.
package lint

import (
	"context"
	"fmt"
	"strings"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/reporter"
)

// Result holds the verification outcome for one reconstructed file.
type Result struct {
	Path  string
	Valid bool
	Err   error
}

// memResolver resolves filenames against an in-memory batch of
// reconstructed sources. Anything outside the batch — well-known types
// included — is reported as not found; a recovered file that imports one
// of those is still syntactically checked but cannot be fully resolved,
// so a resolution failure alone isn't necessarily a bad reconstruction.
type memResolver struct {
	files map[string]string
}

func (r *memResolver) FindFileByPath(path string) (protocompile.SearchResult, error) {
	if content, ok := r.files[path]; ok {
		return protocompile.SearchResult{Source: strings.NewReader(content)}, nil
	}
	return protocompile.SearchResult{}, errNotFound(path)
}

type errNotFound string

func (e errNotFound) Error() string { return fmt.Sprintf("file not found: %s", string(e)) }

// Verify compiles every entry in files (path -> reconstructed source)
// against each other and reports, per file, whether it parsed cleanly.
// Files that import a sibling in the same batch resolve against it;
// files that import anything else (well-known types, unreachable
// external dependencies) are still checked syntactically but cannot be
// fully type-resolved, so a resolution failure there is reported but
// does not necessarily indicate a bad reconstruction.
func Verify(ctx context.Context, files map[string]string) []Result {
	resolver := &memResolver{files: files}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	results := make([]Result, 0, len(names))
	for _, name := range names {
		var rep reporter.Reporter = reporter.NewReporter(func(reporter.ErrorWithPos) error {
			return nil
		}, nil)

		compiler := protocompile.Compiler{
			Resolver:       resolver,
			SourceInfoMode: protocompile.SourceInfoNone,
			Reporter:       rep,
		}
		_, err := compiler.Compile(ctx, name)
		results = append(results, Result{Path: name, Valid: err == nil, Err: err})
	}
	return results
}
