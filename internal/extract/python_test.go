package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/autodocs/internal/model"
)

func TestPython_Scenario(t *testing.T) {
	m := parseSource(t, "/src/f.py", "def f(x: int = 1) -> str:\n    return str(x)\n", Options{})

	require.Len(t, m.Symbols, 1)
	f := findFunction(t, m, "f")
	assert.Equal(t, "str", f.ReturnType)
	require.Len(t, f.Parameters, 1)
	assert.Equal(t, "x", f.Parameters[0].Name)
	assert.Equal(t, "int", f.Parameters[0].Type)
	require.NotNil(t, f.Parameters[0].Default)
	assert.Equal(t, "1", *f.Parameters[0].Default)
}

func TestPython_BlockExtent(t *testing.T) {
	src := "def first():\n" +
		"    a = 1\n" +
		"    return a\n" +
		"def second():\n" +
		"    pass\n"
	m := parseSource(t, "/src/b.py", src, Options{})

	first := findFunction(t, m, "first")
	second := findFunction(t, m, "second")
	assertSpan(t, 1, 3, first.StartLine, first.EndLine, "first")
	assert.Equal(t, second.StartLine-1, first.EndLine, "block ends on the line before the sibling")
	assertSpan(t, 4, 5, second.StartLine, second.EndLine, "second")
}

func TestPython_CommentAtHeaderIndentEndsBlock(t *testing.T) {
	src := "def first():\n" +
		"    return 1\n" +
		"# about second\n" +
		"def second():\n" +
		"    # indented comments stay inside\n" +
		"    pass\n" +
		"    # trailing\n"
	m := parseSource(t, "/src/c.py", src, Options{})

	first := findFunction(t, m, "first")
	assertSpan(t, 1, 2, first.StartLine, first.EndLine, "first")
	second := findFunction(t, m, "second")
	assertSpan(t, 4, 7, second.StartLine, second.EndLine, "second")
}

func TestPython_Fixture(t *testing.T) {
	m := parseFixture(t, "inventory.py")

	assert.Equal(t, model.GrammarPython, m.Grammar)
	assert.Equal(t, []string{"Inventory", "load_items", "f"}, symbolNames(m))

	t.Run("class", func(t *testing.T) {
		inv := findType(t, m, "Inventory")
		assert.Equal(t, model.TypeKindClass, inv.Kind)
		require.NotNil(t, inv.SuperType)
		assert.Equal(t, "BaseStore", *inv.SuperType, "only the first positional base is kept")
		require.NotNil(t, inv.Comments)
		assert.Equal(t, "Tracks stock levels.\n\nItems are keyed by SKU.", *inv.Comments)
		assert.Equal(t, 14, inv.StartLine)
		assert.Equal(t, 41, inv.EndLine)
	})

	t.Run("constructor", func(t *testing.T) {
		inv := findType(t, m, "Inventory")
		require.NotNil(t, inv.Constructor)
		ctor := *inv.Constructor
		assert.Equal(t, "__init__", ctor.Name)
		require.Len(t, ctor.Parameters, 2, "self is dropped")
		assert.Equal(t, "name", ctor.Parameters[0].Name)
		assert.Equal(t, "str", ctor.Parameters[0].Type)
		assert.Equal(t, "capacity", ctor.Parameters[1].Name)
		require.NotNil(t, ctor.Parameters[1].Default)
		assert.Equal(t, "10", *ctor.Parameters[1].Default)
		assert.Equal(t, "Any", ctor.ReturnType)
	})

	t.Run("methods", func(t *testing.T) {
		inv := findType(t, m, "Inventory")
		require.Len(t, inv.Methods, 3)

		fromFile := findMethod(t, inv, "from_file")
		assert.True(t, fromFile.Static)
		assert.Equal(t, `"Inventory"`, fromFile.ReturnType)
		require.Len(t, fromFile.Parameters, 1)
		assert.Equal(t, "path", fromFile.Parameters[0].Name)

		refresh := findMethod(t, inv, "refresh")
		assert.True(t, refresh.Async)
		assert.False(t, refresh.Static)
		assert.Equal(t, "None", refresh.ReturnType)
		require.Len(t, refresh.Parameters, 1, "bare * is not a parameter")
		assert.Equal(t, "force", refresh.Parameters[0].Name)
		assert.Equal(t, "bool", refresh.Parameters[0].Type)
		assert.True(t, refresh.Parameters[0].Optional)

		iter := findMethod(t, inv, "_iter_skus")
		assert.True(t, iter.Generator)
		assert.Equal(t, model.VisibilityProtected, iter.Visibility)
		assert.Empty(t, iter.Parameters)
	})

	t.Run("properties", func(t *testing.T) {
		inv := findType(t, m, "Inventory")
		require.Len(t, inv.Properties, 5)

		currency := findProperty(t, inv, "currency")
		assert.Equal(t, "str", currency.Type)
		assert.False(t, currency.Static)

		maxItems := findProperty(t, inv, "max_items")
		assert.True(t, maxItems.Static)
		assert.Equal(t, "Any", maxItems.Type)

		assert.Equal(t, model.VisibilityPublic, findProperty(t, inv, "name").Visibility)
		items := findProperty(t, inv, "_items")
		assert.Equal(t, model.VisibilityProtected, items.Visibility)
		assert.Equal(t, "dict", items.Type)
		assert.Equal(t, model.VisibilityPrivate, findProperty(t, inv, "__lock").Visibility)
	})

	t.Run("functions", func(t *testing.T) {
		load := findFunction(t, m, "load_items")
		require.NotNil(t, load.Comments)
		assert.Equal(t, "Load items from path.", *load.Comments)
		assert.Equal(t, "list", load.ReturnType)
		assertSpan(t, 42, 45, load.StartLine, load.EndLine, "load_items")

		names := make([]string, 0, len(load.Parameters))
		for _, p := range load.Parameters {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"path", "limit", "*args", "**kwargs"}, names)
		assert.Equal(t, "Any", load.Parameters[0].Type)
		assert.Nil(t, load.Parameters[0].Default)

		f := findFunction(t, m, "f")
		assertSpan(t, 46, 47, f.StartLine, f.EndLine, "f")
	})

	t.Run("imports", func(t *testing.T) {
		require.Len(t, m.Imports, 4)

		assert.Equal(t, "os", m.Imports[0].Source)
		assert.Equal(t, model.BindingNamespace, m.Imports[0].Bindings[0].Kind)

		js := m.Imports[1].Bindings[0]
		assert.Equal(t, "js", js.Local)
		require.NotNil(t, js.Imported)
		assert.Equal(t, "json", *js.Imported)

		typing := m.Imports[2]
		assert.Equal(t, "typing", typing.Source)
		assert.Equal(t, 5, typing.StartLine)
		require.Len(t, typing.Bindings, 2)
		assert.Equal(t, "Any", typing.Bindings[0].Local)
		assert.Equal(t, "Opt", typing.Bindings[1].Local)
		require.NotNil(t, typing.Bindings[1].Imported)
		assert.Equal(t, "Optional", *typing.Bindings[1].Imported)

		star := m.Imports[3]
		assert.Equal(t, ".models", star.Source)
		assert.Equal(t, model.ImportBinding{Local: "*", Kind: model.BindingNamespace}, star.Bindings[0])
	})

	t.Run("exports", func(t *testing.T) {
		require.Len(t, m.Exports, 2)
		assert.Equal(t, model.ExportEdge{Name: "Inventory", Kind: model.ExportNamed, StartLine: 11}, m.Exports[0])
		assert.Equal(t, model.ExportEdge{Name: "load_items", Kind: model.ExportNamed, StartLine: 11}, m.Exports[1])
	})
}

func TestPython_MultiLineHeader(t *testing.T) {
	src := "def build(\n" +
		"    name: str,  # the name\n" +
		"    opts: dict[str, int] = {},\n" +
		") -> Tuple[int, str]:\n" +
		"    return 1, name\n"
	m := parseSource(t, "/src/m.py", src, Options{})

	build := findFunction(t, m, "build")
	require.Len(t, build.Parameters, 2)
	assert.Equal(t, "dict[str, int]", build.Parameters[1].Type)
	require.NotNil(t, build.Parameters[1].Default)
	assert.Equal(t, "{}", *build.Parameters[1].Default)
	assert.Equal(t, "Tuple[int, str]", build.ReturnType)
	assertSpan(t, 1, 5, build.StartLine, build.EndLine, "build")
}

func TestPython_UnterminatedDocstring(t *testing.T) {
	src := "def f():\n" +
		"    \"\"\"Starts here\n" +
		"    and never ends\n"
	m := parseSource(t, "/src/d.py", src, Options{})

	f := findFunction(t, m, "f")
	require.NotNil(t, f.Comments)
	assert.Equal(t, "Starts here\nand never ends", *f.Comments)
}

func TestPython_DocstringHidesHeaders(t *testing.T) {
	src := "def outer():\n" +
		"    '''\n" +
		"def fake():\n" +
		"    '''\n" +
		"    return 1\n"
	m := parseSource(t, "/src/h.py", src, Options{})

	assert.Equal(t, []string{"outer"}, symbolNames(m))
	outer := findFunction(t, m, "outer")
	assert.Equal(t, 5, outer.EndLine)
}

func TestPython_MixedIndentation(t *testing.T) {
	src := "class A:\n" +
		"    def a(self):\n" +
		"\t\treturn 1\n"

	t.Run("lenient", func(t *testing.T) {
		m := parseSource(t, "/src/mixed.py", src, Options{})
		assert.Equal(t, []string{"A"}, symbolNames(m))
	})

	t.Run("strict", func(t *testing.T) {
		_, err := NewRegistry(Options{Strict: true}).Parse(context.Background(), "/src/mixed.py", []byte(src))
		var grammarErr *GrammarError
		require.ErrorAs(t, err, &grammarErr)
		assert.Equal(t, 3, grammarErr.Line)
	})
}

func TestPython_StrictSyntaxError(t *testing.T) {
	src := "def ok():\n    return 1\n\ndef broken(:\n    pass\n"

	m := parseSource(t, "/src/s.py", src, Options{})
	assert.Contains(t, symbolNames(m), "ok")

	_, err := NewRegistry(Options{Strict: true}).Parse(context.Background(), "/src/s.py", []byte(src))
	var grammarErr *GrammarError
	require.ErrorAs(t, err, &grammarErr)
	assert.Equal(t, model.GrammarPython, grammarErr.Grammar)
}

func TestPython_NestedDefsIgnored(t *testing.T) {
	src := "def outer():\n" +
		"    def inner():\n" +
		"        yield 1\n" +
		"    return inner\n" +
		"\n" +
		"class K:\n" +
		"    class Meta:\n" +
		"        def hidden(self):\n" +
		"            pass\n" +
		"    def shown(self):\n" +
		"        pass\n"
	m := parseSource(t, "/src/n.py", src, Options{})

	assert.Equal(t, []string{"outer", "K"}, symbolNames(m))
	k := findType(t, m, "K")
	require.Len(t, k.Methods, 1)
	assert.Equal(t, "shown", k.Methods[0].Name)
}
