package tagtext

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/jsdocts/internal/errors"
)

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want string
		hook bool
	}{
		{"returns", "return", true},
		{"arg", "param", true},
		{"argument", "param", true},
		{"prop", "property", true},
		{"var", "member", true},
		{"defaultvalue", "default", true},
		{"typedef", "typedef", true},
		{"template", "template", true},
		{"see", "see", false},
		{"classdesc", "classdesc", false},
	}
	for _, tt := range tests {
		if got := Canonical(tt.tag); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.tag, got, tt.want)
		}
		if got := IsHooked(tt.tag); got != tt.hook {
			t.Errorf("IsHooked(%q) = %v, want %v", tt.tag, got, tt.hook)
		}
	}
}

func TestFindRegion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantStart int
		wantEnd   int
	}{
		{"simple", "@param {number} x", 7, 15},
		{"none", "@see Foo", -1, -1},
		{"nested", "@type {{a: {b: number}}} rest", 6, 24},
		{"brace in string", "@type {'}'} x", 6, 11},
		{"escaped open", `\{not} {real}`, 7, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start, end, err := FindRegion(tt.text)
			if err != nil {
				t.Fatalf("FindRegion: %v", err)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("FindRegion(%q) = (%d, %d), want (%d, %d)", tt.text, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestFindRegionUnbalanced(t *testing.T) {
	t.Parallel()

	_, _, err := FindRegion("@type {{a: number}")
	if !errors.Is(err, errors.ErrMissingClosingBrace) {
		t.Fatalf("err = %v, want ErrMissingClosingBrace", err)
	}
	if err.Error() != "Missing closing '}'" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"arrow", "@param {(a: number) => void} cb The callback.", "@param {function(): void} cb The callback."},
		{"object", "@typedef {{a:number;b:string}} Pair", "@typedef {{a:number,b:string}} Pair"},
		{"object without inner braces", "@type {a:number;b:string}", "@type {a:number;b:string}"},
		{"no braces", "@param x", "@param x"},
		{"inline tag", "@param {@link Foo} x", "@param {@link Foo} x"},
		{"only first region", "@param {[a, b]} x see {[c]}", "@param {Array} x see {[c]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Transform(tt.in)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformMissingBrace(t *testing.T) {
	t.Parallel()

	in := "@type {number"
	got, err := Transform(in)
	if !errors.IsSyntaxError(err) {
		t.Fatalf("err = %v, want syntax error", err)
	}
	if got != in {
		t.Errorf("Transform returned %q on error, want input unchanged", got)
	}
}

func TestBlocks(t *testing.T) {
	t.Parallel()

	value := "*\n * Summary.\n * @param {T} a\n * @returns {T}\n "
	got := Blocks(value)
	want := []Block{
		{Name: "param", Start: 17, End: 30},
		{Name: "returns", Start: 33, End: len(value)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Blocks mismatch (-want +got):\n%s", diff)
	}
	if value[got[0].Start] != '@' || value[got[1].Start] != '@' {
		t.Errorf("block starts do not point at '@'")
	}
}

func TestTransformComment(t *testing.T) {
	t.Parallel()

	value := "*\n * @param {[a, b]} x\n * @see {@link y}\n * @returns {{a:number;b:string}} r\n "
	want := "*\n * @param {Array} x\n * @see {@link y}\n * @returns {{a:number,b:string}} r\n "

	got, err := TransformComment(value)
	if err != nil {
		t.Fatalf("TransformComment: %v", err)
	}
	if got != want {
		t.Errorf("TransformComment:\n%q\nwant:\n%q", got, want)
	}
}

func TestTransformCommentError(t *testing.T) {
	t.Parallel()

	value := "*\n * @param {number x\n "
	got, err := TransformComment(value)
	if !errors.Is(err, errors.ErrMissingClosingBrace) {
		t.Fatalf("err = %v, want ErrMissingClosingBrace", err)
	}
	if got != value {
		t.Errorf("TransformComment returned %q on error", got)
	}
}
