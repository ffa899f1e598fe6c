package rewrite

import (
	"testing"

	"github.com/phobologic/jsdocts/internal/graph"
	"github.com/phobologic/jsdocts/internal/lang"
	"github.com/phobologic/jsdocts/internal/parse"
)

func TestExtendsSameFileNamedExport(t *testing.T) {
	t.Parallel()

	const path = "/p/test/index.js"
	src := `/**
 * @module test
 */

/**
 * Base.
 */
export class A {}

export class B extends A {}
`
	p, err := parse.New(lang.JavaScript)
	if err != nil {
		t.Fatalf("parse.New: %v", err)
	}
	s := graph.NewSession(graph.Options{
		Files:    []string{path},
		Parser:   p,
		Exists:   func(name string) bool { return name == path },
		ReadFile: func(string) ([]byte, error) { return []byte(src), nil },
	})
	f, err := s.File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}

	if _, err := File(f, s, Options{}); err != nil {
		t.Fatalf("File: %v", err)
	}

	a := f.Declarations[0].Inner
	if len(a.Comments) != 1 || a.Comments[0].Value != "* @classdesc\n * Base.\n " {
		t.Errorf("A comments = %+v", a.Comments)
	}
	if !a.Comments[0].Moved() {
		t.Error("A's description was not moved off the export wrapper")
	}

	wrapper := f.Declarations[0].Comments
	if len(wrapper) != 2 || wrapper[0].Value != "*\n * @module test\n " || wrapper[1].Value != "* @ignore " {
		t.Errorf("wrapper comments = %+v", wrapper)
	}

	b := f.Declarations[1].Inner
	want := "* @classdesc\n * @extends module:test.A\n "
	if len(b.Comments) != 1 || b.Comments[0].Value != want {
		t.Errorf("B comments = %+v, want one comment %q", b.Comments, want)
	}
}

func TestApplyClassMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string // values of the class's comments
	}{
		{
			name: "undocumented",
			src:  "class C {}\n",
			want: []string{"* @classdesc\n "},
		},
		{
			name: "documented",
			src:  "/**\n * A class.\n */\nclass C {}\n",
			want: []string{"* @classdesc\n * A class.\n "},
		},
		{
			name: "classdesc kept",
			src:  "/**\n * @classdesc\n * A class.\n */\nclass C {}\n",
			want: []string{"*\n * @classdesc\n * A class.\n "},
		},
		{
			name: "single line",
			src:  "/** A class. */\nclass C {}\n",
			want: []string{"* A class. @classdesc "},
		},
		{
			name: "single line with superclass",
			src:  "/** A class. */\nclass C extends Base {}\n",
			want: []string{"* @classdesc\n * A class.\n * @extends Base\n "},
		},
		{
			name: "generic extends dropped",
			src:  "/**\n * @extends {Base<string>}\n */\nclass C extends Base {}\n",
			want: []string{"* @classdesc\n * @extends Base\n "},
		},
		{
			name: "imported superclass",
			src:  "import Base from './Base.js';\n\nclass C extends Base {}\n",
			want: []string{"* @classdesc\n * @extends module:Base~Base\n "},
		},
		{
			name: "member superclass",
			src:  "class C extends ns.Base {}\n",
			want: []string{"* @classdesc\n * @extends ns.Base\n "},
		},
		{
			name: "typedef is not a class comment",
			src:  "/** @typedef {Object} X */\nclass C {}\n",
			want: []string{"* @typedef {Object} X ", "* @classdesc\n "},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := parseFile(t, "/p/src/mod.js", tt.src)
			r := newFakeResolver(map[string]string{"./Base.js|default": "module:Base~Base"})
			ApplyClassMarkers(f, BuildTable(f), r)

			cls := f.Declarations[len(f.Declarations)-1]
			var got []string
			for _, c := range cls.Comments {
				got = append(got, c.Value)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("comments = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("comment %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWrapperKeepsNonDescriptiveComments(t *testing.T) {
	t.Parallel()

	f := parseFile(t, "/p/src/mod.js", "/** @module m */\nexport class C {}\n")
	ApplyClassMarkers(f, BuildTable(f), newFakeResolver(nil))

	wrapper := f.Declarations[0]
	if len(wrapper.Comments) != 1 || wrapper.Comments[0].Value != "* @module m " {
		t.Errorf("wrapper comments = %+v", wrapper.Comments)
	}
	cls := wrapper.Inner
	if len(cls.Comments) != 1 || !cls.Comments[0].Synthetic() {
		t.Fatalf("class comments = %+v, want one synthesized", cls.Comments)
	}
	if got := len(f.Comments); got != 2 {
		t.Errorf("file has %d comments, want 2", got)
	}
}

func TestInjectExtends(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  string
	}{
		{"*\n ", "*\n * @extends X\n "},
		{"*\n * Doc.\n ", "*\n * Doc.\n * @extends X\n "},
		{"*\n * @augments Y\n * Doc.\n ", "*\n * Doc.\n * @extends X\n "},
		{"*\n * @extends {Y<T>} ", "*\n * @extends X\n "},
	}
	for _, tt := range tests {
		if got := injectExtends(tt.value, "X"); got != tt.want {
			t.Errorf("injectExtends(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
