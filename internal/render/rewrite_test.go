package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	r := NewResolver(testCatalog(), nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no mentions", "removed without a replacement", "removed without a replacement"},
		{"empty", "", ""},
		{"version numbers untouched", "since 1.2.3, use the other one", "since 1.2.3, use the other one"},
		{"class", `use Foo\Bar instead`, "use [`Bar`](api:Foo\\Bar) instead"},
		{"leading separator", `use \Foo\Bar instead`, "use [`Bar`](api:Foo\\Bar) instead"},
		{"method", `use Foo\Bar::doThing() instead`, "use [`Bar::doThing()`](api:Foo\\Bar::doThing()) instead"},
		{"const", `use Foo\Bar::LIMIT instead`, "use [`Bar::LIMIT`](api:Foo\\Bar::LIMIT) instead"},
		{"config", `use Foo\Bar.db_fields instead`, "use [`Bar.db_fields`](api:Foo\\Bar->db_fields) instead"},
		{"property", `use Foo\Bar->size instead`, "use [`Bar->size`](api:Foo\\Bar->size) instead"},
		{"sentence end", `use Foo\Bar.`, "use [`Bar`](api:Foo\\Bar)."},
		{"unknown class kept verbatim", `use Foo\Missing::doThing() instead`, "use `Foo\\Missing::doThing()` instead"},
		{"third party kept verbatim", `use Vendor\Lib instead`, "use `Vendor\\Lib` instead"},
		{"unknown class with odd suffix", `use Foo\Missing->doThing()`, "use `Foo\\Missing->doThing()`"},
		{
			"multiple mentions",
			`use Foo\Bar::doThing() or Vendor\Lib::other()`,
			"use [`Bar::doThing()`](api:Foo\\Bar::doThing()) or `Vendor\\Lib::other()`",
		},
		{"non-ascii identifiers", `use Föö\Bär instead`, "use `Föö\\Bär` instead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Rewrite(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Rewrite() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRewriteMalformedSuffix(t *testing.T) {
	r := NewResolver(testCatalog(), nil)

	for _, in := range []string{
		`use Foo\Bar->doThing() instead`,
		`use Foo\Bar.doThing() instead`,
	} {
		_, err := r.Rewrite(in)
		assert.ErrorIs(t, err, ErrMalformedReference, in)
	}
}

func TestRewriteIdempotentWithoutMentions(t *testing.T) {
	r := NewResolver(testCatalog(), nil)
	in := "This API will go away; see the upgrade guide (section 4.2) for details."

	once, err := r.Rewrite(in)
	require.NoError(t, err)
	twice, err := r.Rewrite(once)
	require.NoError(t, err)

	assert.Equal(t, in, once)
	assert.Equal(t, once, twice)
}
