package render

import (
	"testing"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/changes"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCanonicalCategoryAndKindOrder(t *testing.T) {
	r := newTestRenderer(t)

	// Build the module back to front so nothing depends on construction order.
	module := changes.ModuleChanges{}
	for i := len(changes.CategoryOrder) - 1; i >= 0; i-- {
		category := changes.CategoryOrder[i]
		byKind := changes.CategoryChanges{}
		for j := len(changes.KindOrder) - 1; j >= 0; j-- {
			kind := changes.KindOrder[j]
			if kind != changes.KindFunction && kind != changes.KindClass {
				continue
			}
			name := "fn"
			if kind == changes.KindClass {
				name = `Foo\Bar`
			}
			byKind[kind] = changes.KindChanges{name: {APIType: string(kind)}}
		}
		module[category] = byKind
	}

	ordered, err := r.Order(changes.ChangeSet{"acme/widgets": module})
	require.NoError(t, err)
	require.Len(t, ordered, 1)

	messages := ordered[0].Messages
	require.Len(t, messages, len(changes.CategoryOrder)*2)

	want := []string{
		"Removed deprecated class `Foo\\Bar`",
		"Removed deprecated function `fn()`",
		"Class [`Bar`](api:Foo\\Bar) is now internal and should not be used",
		"Function [`fn()`](api:fn()) is now internal and should not be used",
		"Changed visibility for class [`Bar`](api:Foo\\Bar) from undefined to undefined",
		"Changed visibility for function [`fn()`](api:fn()) from undefined to undefined",
		"Changed return type for class [`Bar`](api:Foo\\Bar) from dynamic to dynamic",
		"Changed return type for function [`fn()`](api:fn()) from dynamic to dynamic",
		"Changed type of class [`Bar`](api:Foo\\Bar) from dynamic to dynamic",
		"Changed type of function [`fn()`](api:fn()) from dynamic to dynamic",
		"Class [`Bar`](api:Foo\\Bar) is now abstract",
		"Function [`fn()`](api:fn()) is now abstract",
		"Class [`Bar`](api:Foo\\Bar) is now final and cannot be subclassed",
		"Function [`fn()`](api:fn()) is now final and cannot be overridden",
		"Added new class [`Bar`](api:Foo\\Bar)",
		"Added new function [`fn()`](api:fn())",
		"Class [`Bar`](api:Foo\\Bar) no longer returns its value by reference",
		"Function [`fn()`](api:fn()) no longer returns its value by reference",
		"Class [`Bar`](api:Foo\\Bar) is no longer passed by reference",
		"Function [`fn()`](api:fn()) is no longer passed by reference",
		"Class [`Bar`](api:Foo\\Bar) is no longer read-only",
		"Function [`fn()`](api:fn()) is no longer read-only",
		"Class [`Bar`](api:Foo\\Bar) is no longer variadic",
		"Function [`fn()`](api:fn()) is no longer variadic",
		"Changed default value for class [`Bar`](api:Foo\\Bar) from none to none",
		"Changed default value for function [`fn()`](api:fn()) from none to none",
	}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Errorf("Order() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderSortsLeafByMessage(t *testing.T) {
	r := newTestRenderer(t)

	// Raw names would sort "aaa" before "zzz"; the owning class must win.
	cs := changes.ChangeSet{
		"acme/widgets": {
			changes.CategoryVisibility: {
				changes.KindMethod: {
					"aaa": {APIType: "method", Class: `Zed\Thing`, From: "public", To: "private"},
					"zzz": {APIType: "method", Class: `Alpha\Thing`, From: "public", To: "private"},
				},
			},
		},
	}

	ordered, err := r.Order(cs)
	require.NoError(t, err)
	require.Len(t, ordered, 1)
	assert.Equal(t, []string{
		"Changed visibility for method `Alpha\\Thing::zzz()` from `public` to `private`",
		"Changed visibility for method `Zed\\Thing::aaa()` from `public` to `private`",
	}, ordered[0].Messages)
}

func TestOrderModules(t *testing.T) {
	r := newTestRenderer(t)
	removed := changes.ModuleChanges{
		changes.CategoryRemoved: {changes.KindFunction: {"fn": {APIType: "function"}}},
	}

	cs := changes.ChangeSet{
		"zeta/last":   removed,
		"Alpha/upper": removed,
		"alpha/first": removed,
		"empty/one":   {changes.CategoryRemoved: {}},
		"empty/two":   {},
	}

	ordered, err := r.Order(cs)
	require.NoError(t, err)

	var modules []string
	for _, m := range ordered {
		modules = append(modules, m.Module)
	}
	assert.Equal(t, []string{"Alpha/upper", "alpha/first", "zeta/last"}, modules)
}

func TestOrderDeterministic(t *testing.T) {
	r := newTestRenderer(t)

	build := func(names []string) changes.ChangeSet {
		byName := changes.KindChanges{}
		for _, n := range names {
			byName[n] = changes.Record{APIType: "function"}
		}
		return changes.ChangeSet{
			"acme/widgets": {changes.CategoryNew: {changes.KindFunction: byName}},
			"acme/gadgets": {changes.CategoryRemoved: {changes.KindFunction: byName}},
		}
	}

	first, err := r.Order(build([]string{"c", "a", "b", "e", "d"}))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := r.Order(build([]string{"e", "d", "c", "b", "a"}))
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Order() not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestOrderRejectsInvalidStructure(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Order(changes.ChangeSet{
		"acme/widgets": {changes.Category("static"): {changes.KindMethod: {"x": {}}}},
	})
	assert.ErrorIs(t, err, changes.ErrUnknownCategory)

	_, err = r.Order(changes.ChangeSet{
		"acme/widgets": {changes.CategoryRemoved: {changes.Kind("trait"): {"x": {}}}},
	})
	assert.ErrorIs(t, err, changes.ErrUnknownKind)

	_, err = r.Order(changes.ChangeSet{
		"acme/widgets": {changes.CategoryRemoved: {changes.KindMethod: {"x": {APIType: "method"}}}},
	})
	require.ErrorIs(t, err, ErrMissingContext)
	assert.Contains(t, err.Error(), "acme/widgets")
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	r := newTestRenderer(t)
	cs := changes.ChangeSet{
		"acme/widgets": {
			changes.CategoryRemoved: {changes.KindClass: {`Foo\Bar`: {APIType: "class", Message: "Will be gone"}}},
		},
	}
	before := cs["acme/widgets"][changes.CategoryRemoved][changes.KindClass][`Foo\Bar`]

	_, err := r.Order(cs)
	require.NoError(t, err)

	after := cs["acme/widgets"][changes.CategoryRemoved][changes.KindClass][`Foo\Bar`]
	assert.Equal(t, before, after)
	assert.Len(t, cs["acme/widgets"], 1)
}
