package tagtext

import "testing"

var normalizeCases = []struct {
	name string
	in   string
	want string
}{
	{"nested object separators", "{{a:number;b:string}}", "{{a:number,b:string}}"},
	{"trailing separator dropped", "{{a:number;}}", "{{a:number}}"},
	// Separators are rewritten only inside a record type, one brace deeper
	// than the type expression itself.
	{"top-level semicolon untouched", "{a;b}", "{a;b}"},
	{"bare record body untouched", "{a:number;b:string}", "{a:number;b:string}"},
	{"multiline object", "{{\n *   a: number;\n *   b: string;\n * }}", "{{\n *   a: number,\n *   b: string\n * }}"},
	{"arrow function", "{(a: number) => void}", "{function(): void}"},
	{"function keyword", "{function(a: number, b: string): void}", "{function(): void}"},
	{"arrow with nested object", "{(a: {x: number; y: number}) => void}", "{function(): void}"},
	{"arrow in object member", "{{cb: (a: number) => void; n: number}}", "{{cb: function(): void, n: number}}"},
	{"arrow in generic", "{Map<string, (x: number) => void>}", "{Map<string, function(): void>}"},
	{"generic arrow", "{<T>(a: T) => T}", "{function(): T}"},
	{"curried arrow", "{() => (x: number) => void}", "{function(): function(): void}"},
	{"method shorthand", "{{foo(a: number): string}}", "{{foo: function(): string}}"},
	{"grouping parens", "{(string|number)}", "{(string|number)}"},
	{"tuple", "{[number, string]}", "{Array}"},
	{"nested tuple", "{Array<[number, [string, boolean]]>}", "{Array<Array>}"},
	{"array suffix", "{string[][]}", "{string[][]}"},
	{"generic array suffix", "{Array<string>[]}", "{Array<string>[]}"},
	{"bracket notation single quote", "{interfaceSeparators['a']}", "{interfaceSeparators.a}"},
	{"bracket notation double quote", `{Foo["bar"]}`, "{Foo.bar}"},
	{"bracket notation after call", "{ReturnType<typeof f>['x']}", "{ReturnType<typeof f>.x}"},
	{"bracket notation non identifier", "{Foo['a-b']}", "{Foo['a-b']}"},
	{"template literal", "{`a${string}`}", "{'a${string}'}"},
	{"string literal untouched", "{{a: 'x;y'}}", "{{a: 'x;y'}}"},
	{"escaped quote", `{{a: 'it\'s;'; b: number}}`, `{{a: 'it\'s;', b: number}}`},
	{"plain", "{number}", "{number}"},
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	for _, tt := range normalizeCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	for _, tt := range normalizeCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			once := Normalize(tt.in)
			if twice := Normalize(once); twice != once {
				t.Errorf("Normalize not idempotent: %q -> %q -> %q", tt.in, once, twice)
			}
		})
	}
}

func TestNormalizeKeepsOuterBraces(t *testing.T) {
	t.Parallel()

	for _, tt := range normalizeCases {
		got := Normalize(tt.in)
		if got[0] != '{' || got[len(got)-1] != '}' {
			t.Errorf("Normalize(%q) = %q lost its outer braces", tt.in, got)
		}
		if _, end, err := FindRegion(got); err != nil || end != len(got) {
			t.Errorf("Normalize(%q) = %q is not one balanced region (end=%d, err=%v)", tt.in, got, end, err)
		}
	}
}

// The tuple/subscript split only looks at the character directly before '['.
func TestTupleHeuristicIsPositional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"{Foo['a']}", "{Foo.a}"},
		{"{Foo ['a']}", "{Foo Array}"},
		{"{(Foo)['a']}", "{(Foo).a}"},
		{"{Array<string> []}", "{Array<string> Array}"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
