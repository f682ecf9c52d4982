// Package filetest verifies that content written to io.Writers during a test
// matches golden files under testdata/.
//
// A Tester is created at the start of the test, writers are registered
// with Add, and Assert is deferred so that everything written during the
// test is compared at the end:
//
//	g := filetest.New(t)
//	defer g.Assert()
//
//	log := zaplog.NewZap().Example().Test(g).Build()
//
// Golden files are (re)generated by passing "-update" to go test.
package filetest

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// New is a wrapper for goldie.New, returning a *Tester.
func New(t *testing.T, opts ...goldie.Option) *Tester { //nolint:thelper
	return &Tester{
		G:       goldie.New(t, opts...),
		T:       t,
		targets: make(map[string]*Target),
	}
}

// Tester registers golden file targets and verifies them against what has
// been written to them.
type Tester struct {
	G *goldie.Goldie
	T *testing.T

	targets map[string]*Target
}

// Target is a write target backed by a buffer. The filters are applied in
// order on the buffered content before comparing it with the golden file.
type Target struct {
	buf     bytes.Buffer
	filters []Filter
}

// Filter transforms content before it is compared, similar to an UNIX pipe.
type Filter func([]byte) []byte

// Add registers a target compared with the golden file of the given name.
// If name is already registered, the existing Target is returned.
func (g *Tester) Add(name string) *Target {
	if t, ok := g.targets[name]; ok {
		return t
	}
	t := &Target{}
	g.targets[name] = t
	return t
}

// AddTestFile is a shorthand for Add with the name of the test and the
// given suffix, for example ".yaml".
func (g *Tester) AddTestFile(suffix string) *Target {
	return g.Add(g.T.Name() + suffix)
}

// Filter appends a filter to the Target.
func (t *Target) Filter(filter Filter) *Target {
	t.filters = append(t.filters, filter)
	return t
}

// Writer returns the io.Writer that content sources shall write to.
func (t *Target) Writer() io.Writer { return &t.buf }

// Bytes returns the filtered content written so far.
func (t *Target) Bytes() []byte {
	content := append([]byte(nil), t.buf.Bytes()...)
	for _, filter := range t.filters {
		content = filter(content)
	}
	return content
}

func (g *Tester) each(fn func(t *testing.T, name string, content []byte)) {
	names := make([]string, 0, len(g.targets))
	for name := range g.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target := g.targets[name]
		g.T.Run(name, func(t *testing.T) {
			fn(t, name, target.Bytes())
		})
	}
}

// Assert verifies that all golden files match the written content. Every
// file is verified in its own sub-test.
//
// If the "-update" flag is passed to "go test", for example as
// "go test . -update", the golden files are written before comparing.
func (g *Tester) Assert() { g.each(g.G.Assert) }

// Update writes the content of all targets to their golden files.
func (g *Tester) Update() {
	g.each(func(t *testing.T, name string, content []byte) { //nolint:thelper
		require.NoError(t, g.G.Update(t, name, content))
	})
}

// TrimTrailingSpace removes trailing white space from every line. gofmt
// strips trailing spaces from Example output comments, so example output
// needs the same treatment.
func TrimTrailingSpace(content []byte) []byte {
	lines := bytes.Split(content, []byte{'\n'})
	for i := range lines {
		lines[i] = bytes.TrimRight(lines[i], " \t\r")
	}
	return bytes.Join(lines, []byte{'\n'})
}

// DropLines returns a Filter removing every line starting with prefix.
func DropLines(prefix string) Filter {
	return func(content []byte) []byte {
		s := bufio.NewScanner(bytes.NewReader(content))
		out := make([]byte, 0, len(content))
		for s.Scan() {
			line := s.Bytes()
			if bytes.HasPrefix(line, []byte(prefix)) {
				continue
			}
			out = append(out, line...)
			out = append(out, '\n')
		}
		return out
	}
}
